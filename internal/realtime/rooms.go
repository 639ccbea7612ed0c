package realtime

import "sync"

// Rooms tracks which connections are members of which named room. Join and
// Leave are idempotent; a room with no members is pruned but may be recreated
// by the next join under the same name.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[*Conn]struct{}
	joined  map[*Conn]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		members: map[string]map[*Conn]struct{}{},
		joined:  map[*Conn]map[string]struct{}{},
	}
}

func (r *Rooms) Join(c *Conn, room string) {
	if room == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[room] == nil {
		r.members[room] = map[*Conn]struct{}{}
	}
	r.members[room][c] = struct{}{}

	if r.joined[c] == nil {
		r.joined[c] = map[string]struct{}{}
	}
	r.joined[c][room] = struct{}{}
}

func (r *Rooms) Leave(c *Conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c, room)
}

// LeaveAll drops the connection from every room it joined. Called on
// disconnect; safe to call for a connection that never joined anything.
func (r *Rooms) LeaveAll(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.joined[c] {
		r.leaveLocked(c, room)
	}
	delete(r.joined, c)
}

func (r *Rooms) leaveLocked(c *Conn, room string) {
	if set, ok := r.members[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.members, room)
		}
	}
	if set, ok := r.joined[c]; ok {
		delete(set, room)
	}
}

// Members returns a snapshot of the room's membership at call time. Joins or
// leaves after the snapshot do not affect an in-flight broadcast.
func (r *Rooms) Members(room string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.members[room]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}
