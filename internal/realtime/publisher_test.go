package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool-be/internal/models"
)

// attach wires a loopless connection into the hub so tests can inspect its
// send channel directly.
func attach(h *Hub, userID uint) *Conn {
	c := newConn(userID, nil)
	h.adopt(c)
	return c
}

func drain(c *Conn) []Envelope {
	var out []Envelope
	for {
		select {
		case ev := <-c.send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestNewPublisherNilHub(t *testing.T) {
	assert.Panics(t, func() { NewPublisher(nil) })
}

func TestRideCreatedReachesEveryConnection(t *testing.T) {
	h := NewHub()
	pub := NewPublisher(h)

	driverTab1 := attach(h, 1)
	driverTab2 := attach(h, 1)
	passenger := attach(h, 2)

	ride := models.Ride{ID: 10, DriverID: 1, Origin: "Ghent", Destination: "Brussels"}
	pub.RideCreated(ride, models.User{ID: 1, Name: "Anna"})

	// Global announcement: every connection, including the driver's own
	// other tabs, gets exactly one envelope.
	for _, c := range []*Conn{driverTab1, driverTab2, passenger} {
		evs := drain(c)
		require.Len(t, evs, 1)
		assert.Equal(t, EventNewRide, evs[0].Type)

		data := evs[0].Data.(map[string]any)
		got := data["ride"].(models.Ride)
		assert.Equal(t, "Ghent", got.Origin)
		assert.Equal(t, "Brussels", got.Destination)
	}
}

func TestBookingRequestedTargetsOwnerOnly(t *testing.T) {
	h := NewHub()
	pub := NewPublisher(h)

	ownerTab1 := attach(h, 1)
	ownerTab2 := attach(h, 1)
	passenger := attach(h, 2)

	ride := models.Ride{ID: 10, DriverID: 1, Origin: "A", Destination: "B"}
	booking := models.Booking{ID: 5, RideID: 10, PassengerID: 2, Seats: 1, Status: models.BookingRequested}
	pub.BookingRequested(booking, ride, models.User{ID: 2, Name: "Ben"})

	for _, c := range []*Conn{ownerTab1, ownerTab2} {
		evs := drain(c)
		require.Len(t, evs, 1)
		assert.Equal(t, EventBookingRequest, evs[0].Type)
	}
	assert.Empty(t, drain(passenger))
}

func TestBookingStatusTargetsPassengerOnly(t *testing.T) {
	h := NewHub()
	pub := NewPublisher(h)

	owner := attach(h, 1)
	passenger := attach(h, 2)

	ride := models.Ride{ID: 10, DriverID: 1, Origin: "A", Destination: "B"}
	booking := models.Booking{ID: 5, RideID: 10, PassengerID: 2, Status: models.BookingApproved}
	pub.BookingStatusChanged(booking, ride)

	evs := drain(passenger)
	require.Len(t, evs, 1)
	assert.Equal(t, EventBookingStatus, evs[0].Type)
	assert.Contains(t, evs[0].Message, "approved")

	assert.Empty(t, drain(owner))
}

func TestMessageSentOverDelivers(t *testing.T) {
	h := NewHub()
	pub := NewPublisher(h)

	recipient := attach(h, 2)
	h.JoinRide(recipient, 10)

	sender := attach(h, 1)
	h.JoinRide(sender, 10)

	msg := models.Message{ID: 7, RideID: 10, SenderID: 1, RecipientID: 2, Body: "hi"}
	pub.MessageSent(msg, models.User{ID: 1, Name: "Anna"})

	// Recipient sits in its identity room and the ride room: identity raw +
	// room raw + identity notification + direct = four deliveries. The
	// dedup buffer on the client collapses these, not the server.
	evs := drain(recipient)
	assert.Len(t, evs, 4)

	// Sender only overhears the conversation room copy.
	senderEvs := drain(sender)
	require.Len(t, senderEvs, 1)
	assert.Equal(t, EventNewMessage, senderEvs[0].Type)
}

func TestSendToOfflineUserIsNoOp(t *testing.T) {
	h := NewHub()
	pub := NewPublisher(h)

	// Nobody is connected; nothing should panic or error.
	booking := models.Booking{ID: 1, RideID: 2, PassengerID: 3, Status: models.BookingRejected}
	pub.BookingStatusChanged(booking, models.Ride{ID: 2, DriverID: 4})
}

func TestRemovedConnReceivesNothing(t *testing.T) {
	h := NewHub()
	pub := NewPublisher(h)

	c := attach(h, 1)
	h.JoinRide(c, 10)
	h.RemoveConn(c)

	pub.RideCreated(models.Ride{ID: 10, DriverID: 2}, models.User{ID: 2})
	msg := models.Message{ID: 1, RideID: 10, SenderID: 2, RecipientID: 1, Body: "x"}
	pub.MessageSent(msg, models.User{ID: 2})

	assert.Empty(t, drain(c))
}

func TestRatingReceivedTargetsRatee(t *testing.T) {
	h := NewHub()
	pub := NewPublisher(h)

	driver := attach(h, 1)
	rater := attach(h, 2)

	rating := models.Rating{ID: 3, RideID: 10, RaterID: 2, RateeID: 1, Stars: 5}
	pub.RatingReceived(rating, models.User{ID: 2, Name: "Ben"})

	evs := drain(driver)
	require.Len(t, evs, 1)
	assert.Equal(t, EventNotification, evs[0].Type)
	assert.Empty(t, drain(rater))
}
