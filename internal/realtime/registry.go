package realtime

import "sync"

// Registry maps a user id to its live connections. One user may hold several
// connections at once (multiple tabs / devices).
type Registry struct {
	mu    sync.RWMutex
	conns map[uint]map[*Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: map[uint]map[*Conn]struct{}{}}
}

func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conns[c.UserID] == nil {
		r.conns[c.UserID] = map[*Conn]struct{}{}
	}
	r.conns[c.UserID][c] = struct{}{}
}

// Resolve returns a snapshot of the user's live connections. An offline user
// yields an empty slice, never an error.
func (r *Registry) Resolve(userID uint) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.conns[userID]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// All returns a snapshot of every live connection.
func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Conn
	for _, set := range r.conns {
		for c := range set {
			out = append(out, c)
		}
	}
	return out
}

// Unregister removes the connection. Removing twice is a no-op.
func (r *Registry) Unregister(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.conns[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.conns, c.UserID)
		}
	}
}
