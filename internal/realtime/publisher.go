package realtime

import (
	"fmt"
	"log"

	"carpool-be/internal/models"
)

// Publisher turns domain mutations into envelopes and picks their targets.
// Delivery is a side effect of the mutation, never a correctness requirement:
// every emit runs inside a boundary that logs and continues, so a fault here
// cannot fail the HTTP request that triggered it.
type Publisher struct {
	hub *Hub
}

// NewPublisher panics on a nil hub: emitting through an unconstructed
// publisher is a programming error we want loud at startup, not silent drops.
func NewPublisher(hub *Hub) *Publisher {
	if hub == nil {
		panic("realtime: NewPublisher called with nil hub")
	}
	return &Publisher{hub: hub}
}

func (p *Publisher) emit(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[realtime] emit %s failed: %v", name, r)
		}
	}()
	fn()
}

// BookingRequested notifies the ride owner that a passenger wants a seat.
// Addressed to the owner's identity room only, never broadcast.
func (p *Publisher) BookingRequested(b models.Booking, ride models.Ride, passenger models.User) {
	p.emit("booking-request", func() {
		ev := NewEnvelope(
			EventBookingRequest,
			fmt.Sprintf("%s requested %d seat(s) on %s → %s", passenger.Name, b.Seats, ride.Origin, ride.Destination),
			map[string]any{"booking": b, "ride": ride},
			fmt.Sprintf("/rides/%d/bookings", ride.ID),
		)
		p.hub.Send(ToUser(ride.DriverID), ev)
	})
}

// BookingStatusChanged notifies the requesting passenger of the decision.
func (p *Publisher) BookingStatusChanged(b models.Booking, ride models.Ride) {
	p.emit("booking-status", func() {
		ev := NewEnvelope(
			EventBookingStatus,
			fmt.Sprintf("Your booking for %s → %s was %s", ride.Origin, ride.Destination, b.Status),
			map[string]any{"booking": b, "ride": ride},
			"/bookings",
		)
		p.hub.Send(ToUser(b.PassengerID), ev)
	})
}

// RideCreated announces a new ride to every connected client, including the
// driver's own other tabs.
func (p *Publisher) RideCreated(ride models.Ride, driver models.User) {
	p.emit("new-ride", func() {
		ev := NewEnvelope(
			EventNewRide,
			fmt.Sprintf("%s posted a ride %s → %s", driver.Name, ride.Origin, ride.Destination),
			map[string]any{"ride": ride},
			fmt.Sprintf("/rides/%d", ride.ID),
		)
		p.hub.Send(Broadcast(), ev)
	})
}

// MessageSent deliberately over-delivers on four channels: recipient identity
// room (raw), ride conversation room (raw), recipient identity room again as
// a generic notification, and directly to each of the recipient's live
// connections. A tab may sit in any subset of those channels; the client's
// dedup buffer collapses the duplicates.
func (p *Publisher) MessageSent(msg models.Message, sender models.User) {
	p.emit("message", func() {
		raw := NewEnvelope(
			EventNewMessage,
			fmt.Sprintf("%s: %s", sender.Name, msg.Body),
			map[string]any{"message": msg},
			fmt.Sprintf("/rides/%d/chat", msg.RideID),
		)
		p.hub.Send(ToUser(msg.RecipientID), raw)
		p.hub.Send(ToRide(msg.RideID), raw)

		notif := NewEnvelope(
			EventNotification,
			fmt.Sprintf("New message from %s", sender.Name),
			map[string]any{"message": msg},
			fmt.Sprintf("/rides/%d/chat", msg.RideID),
		)
		p.hub.Send(ToUser(msg.RecipientID), notif)

		p.hub.SendDirect(msg.RecipientID, raw)
	})
}

// RatingReceived tells the rated driver about a new review. There is no
// dedicated event type for ratings; the generic notification carries it.
func (p *Publisher) RatingReceived(r models.Rating, rater models.User) {
	p.emit("rating", func() {
		ev := NewEnvelope(
			EventNotification,
			fmt.Sprintf("%s rated you %d★", rater.Name, r.Stars),
			map[string]any{"rating": r},
			"/profile/ratings",
		)
		p.hub.Send(ToUser(r.RateeID), ev)
	})
}
