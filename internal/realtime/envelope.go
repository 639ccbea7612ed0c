package realtime

import "time"

// EventType enumerates the server-to-client event vocabulary.
type EventType string

const (
	EventBookingRequest EventType = "booking-request"
	EventBookingStatus  EventType = "booking-status"
	EventNewRide        EventType = "new-ride"
	EventNewMessage     EventType = "new-message"
	EventNotification   EventType = "notification"
)

// Envelope is the unit of delivery. It is built once at the moment of the
// domain mutation and never modified after being handed to the hub.
type Envelope struct {
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Link      string    `json:"link,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEnvelope(t EventType, message string, data any, link string) Envelope {
	return Envelope{
		Type:      t,
		Message:   message,
		Data:      data,
		Link:      link,
		Timestamp: time.Now(),
	}
}

// Valid reports whether the envelope carries the required fields. Receivers
// drop invalid envelopes without tearing down the connection.
func (e Envelope) Valid() bool {
	return e.Type != "" && e.Message != ""
}

// Frame is what clients send to the server. Only room joins for now.
type Frame struct {
	Type   string `json:"type"`
	RideID uint   `json:"ride_id,omitempty"`
}

const FrameJoinRoom = "join_room"
