// Package notify is the client-resident side of the delivery pipeline. The
// server intentionally over-delivers message events on several channels, so a
// client must collapse duplicates before showing anything. Buffer keeps a
// time-windowed ledger of recently seen event keys and a display queue whose
// entries expire on their own.
package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"carpool-be/internal/models"
	"carpool-be/internal/realtime"
)

const (
	// DefaultWindow covers near-simultaneous multi-channel arrival of one
	// logical event without suppressing a genuinely new one later.
	DefaultWindow = 5 * time.Second
	// DefaultDisplay is how long an accepted notification stays visible.
	DefaultDisplay = 6 * time.Second
	// VisibleCap is the most entries shown at once; the rest collapse into
	// an overflow count.
	VisibleCap = 4
)

// Record is one accepted, displayable notification.
type Record struct {
	ID        string
	Type      realtime.EventType
	Message   string
	Data      any
	Link      string
	Timestamp time.Time

	timer *time.Timer
}

type Buffer struct {
	mu      sync.Mutex
	window  time.Duration
	display time.Duration
	ledger  map[string]time.Time
	queue   []*Record
}

func NewBuffer() *Buffer {
	return NewBufferWithTimings(DefaultWindow, DefaultDisplay)
}

func NewBufferWithTimings(window, display time.Duration) *Buffer {
	return &Buffer{
		window:  window,
		display: display,
		ledger:  map[string]time.Time{},
	}
}

// Ingest runs an envelope through dedup and, if accepted, enqueues a record
// scheduled for auto-expiry. Returns nil for duplicates and for envelopes
// missing required fields.
func (b *Buffer) Ingest(ev realtime.Envelope) *Record {
	if !ev.Valid() {
		return nil
	}
	if !b.Admit(ev) {
		return nil
	}

	rec := &Record{
		ID:        uuid.NewString(),
		Type:      ev.Type,
		Message:   ev.Message,
		Data:      ev.Data,
		Link:      ev.Link,
		Timestamp: time.Now(),
	}
	b.enqueue(rec)
	return rec
}

// Admit decides whether the envelope is a new logical event. Two keys are
// checked: (type, message text) and, when the payload names an entity,
// (type, entity id). A hit on either within the window rejects the envelope;
// acceptance records both keys.
func (b *Buffer) Admit(ev realtime.Envelope) bool {
	keys := []string{fmt.Sprintf("%s|%s", ev.Type, ev.Message)}
	if id, ok := entityID(ev.Data); ok {
		// A raw new-message and its generic notification wrapper describe
		// the same logical event; fold their types together so the entity
		// key catches the pair.
		t := ev.Type
		if strings.HasPrefix(id, "message:") &&
			(t == realtime.EventNotification || t == realtime.EventNewMessage) {
			t = realtime.EventNewMessage
		}
		keys = append(keys, fmt.Sprintf("%s#%s", t, id))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for k, seen := range b.ledger {
		if now.Sub(seen) > b.window {
			delete(b.ledger, k)
		}
	}

	for _, k := range keys {
		if _, dup := b.ledger[k]; dup {
			return false
		}
	}
	for _, k := range keys {
		b.ledger[k] = now
	}
	return true
}

func (b *Buffer) enqueue(rec *Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec.timer = time.AfterFunc(b.display, func() {
		b.remove(rec.ID)
	})
	b.queue = append(b.queue, rec)
}

// Dismiss removes a notification before its timer fires. Unknown ids are
// ignored.
func (b *Buffer) Dismiss(id string) {
	b.remove(id)
}

func (b *Buffer) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, rec := range b.queue {
		if rec.ID == id {
			rec.timer.Stop()
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			return
		}
	}
}

// Visible returns the newest records up to the visual cap, newest first, and
// the count of older entries still queued behind them.
func (b *Buffer) Visible() ([]Record, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Record, 0, VisibleCap)
	for i := len(b.queue) - 1; i >= 0 && len(out) < VisibleCap; i-- {
		out = append(out, *b.queue[i])
	}
	overflow := len(b.queue) - len(out)
	return out, overflow
}

// Len reports how many records are queued, visible or not.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close stops all pending expiry timers and clears the queue.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, rec := range b.queue {
		rec.timer.Stop()
	}
	b.queue = nil
}

// entityID digs a stable id out of the event payload. Payloads arrive either
// as typed maps built server-side or as decoded JSON maps client-side; both
// shapes nest the entity under its kind.
func entityID(data any) (string, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return "", false
	}

	for _, kind := range []string{"booking", "ride", "message", "rating"} {
		inner, ok := m[kind]
		if !ok {
			continue
		}
		if id, ok := idOf(inner); ok {
			return kind + ":" + id, true
		}
	}
	return "", false
}

func idOf(v any) (string, bool) {
	switch t := v.(type) {
	case map[string]any:
		if id, ok := t["id"]; ok {
			return fmt.Sprint(id), true
		}
	case models.Booking:
		return fmt.Sprint(t.ID), true
	case models.Ride:
		return fmt.Sprint(t.ID), true
	case models.Message:
		return fmt.Sprint(t.ID), true
	case models.Rating:
		return fmt.Sprint(t.ID), true
	}
	return "", false
}
