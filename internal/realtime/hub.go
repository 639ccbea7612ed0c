package realtime

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Conn is one live websocket connection owned by one user.
type Conn struct {
	ID     string
	UserID uint
	sock   *websocket.Conn
	send   chan Envelope

	ctx    context.Context
	cancel context.CancelFunc
}

func newConn(userID uint, sock *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		ID:     uuid.NewString(),
		UserID: userID,
		sock:   sock,
		send:   make(chan Envelope, 64),
		ctx:    ctx,
		cancel: cancel,
	}
}

// deliver enqueues without blocking. A client too slow to drain its channel
// loses events rather than stalling the sender.
func (c *Conn) deliver(ev Envelope) {
	select {
	case c.send <- ev:
	default:
	}
}

// writeLoop is the single writer for the socket, which keeps per-connection
// delivery FIFO. The send channel is never closed; a cancelled connection
// just stops draining and the GC takes care of the rest.
func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.send:
			writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = wsjson.Write(writeCtx, c.sock, ev)
			cancel()
		}
	}
}

func (c *Conn) keepAliveLoop() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = c.sock.Ping(pingCtx)
			cancel()
		}
	}
}

// Hub owns the registry and room topology and fans envelopes out to
// connections. It is constructed once in main and passed down explicitly.
type Hub struct {
	registry *Registry
	rooms    *Rooms
}

func NewHub() *Hub {
	return &Hub{
		registry: NewRegistry(),
		rooms:    NewRooms(),
	}
}

// AddConn registers an authenticated websocket under the user and joins it
// to the user's identity room, so targeted sends reach it from now on.
func (h *Hub) AddConn(userID uint, sock *websocket.Conn) *Conn {
	c := newConn(userID, sock)
	h.adopt(c)

	go c.writeLoop()
	go c.keepAliveLoop()

	log.Printf("[hub] conn %s registered for user %d", c.ID, userID)
	return c
}

// adopt wires the connection into registry and identity room. Split from
// AddConn so tests can attach connections without a socket.
func (h *Hub) adopt(c *Conn) {
	h.registry.Register(c)
	h.rooms.Join(c, ToUser(c.UserID).Room())
}

// RemoveConn tears down all state for the connection. Idempotent.
func (h *Hub) RemoveConn(c *Conn) {
	c.cancel()
	h.registry.Unregister(c)
	h.rooms.LeaveAll(c)

	if c.sock != nil {
		_ = c.sock.Close(websocket.StatusNormalClosure, "bye")
		log.Printf("[hub] conn %s for user %d removed", c.ID, c.UserID)
	}
}

// JoinRide adds the connection to a ride's conversation room. Any
// authenticated connection may join; what gets emitted to the room is
// decided by the domain operations, not by membership.
func (h *Hub) JoinRide(c *Conn, rideID uint) {
	h.rooms.Join(c, ToRide(rideID).Room())
}

// Send fans the envelope out to every connection the address resolves to.
// Fire-and-forget: zero targets is a normal outcome, not an error.
func (h *Hub) Send(addr Address, ev Envelope) {
	var targets []*Conn
	if addr.IsBroadcast() {
		targets = h.registry.All()
	} else {
		targets = h.rooms.Members(addr.Room())
	}

	for _, c := range targets {
		c.deliver(ev)
	}
}

// SendDirect delivers to each of the user's live connections, bypassing room
// resolution entirely.
func (h *Hub) SendDirect(userID uint, ev Envelope) {
	for _, c := range h.registry.Resolve(userID) {
		c.deliver(ev)
	}
}
