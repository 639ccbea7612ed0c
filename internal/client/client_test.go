package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"carpool-be/internal/notify"
	"carpool-be/internal/realtime"
)

// fakeEndpoint accepts one websocket and replays the given envelopes, then
// keeps the connection open until the test ends.
func fakeEndpoint(t *testing.T, envelopes []realtime.Envelope) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}

		ctx := r.Context()
		for _, ev := range envelopes {
			if err := wsjson.Write(ctx, sock, ev); err != nil {
				return
			}
		}
		<-ctx.Done()
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestClientCollapsesMultiChannelDelivery(t *testing.T) {
	// What the server actually emits for one chat message: three raw
	// copies and a notification wrapper around the same payload.
	data := map[string]any{"message": map[string]any{"id": 7, "body": "hi"}}
	raw := realtime.NewEnvelope(realtime.EventNewMessage, "Anna: hi", data, "/rides/10/chat")
	notif := realtime.NewEnvelope(realtime.EventNotification, "New message from Anna", data, "/rides/10/chat")

	srv := fakeEndpoint(t, []realtime.Envelope{raw, raw, raw, notif})
	defer srv.Close()

	buf := notify.NewBuffer()
	defer buf.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := Dial(ctx, wsURL(srv), "any-token", buf)
	require.NoError(t, err)
	defer c.Close()

	go func() { _ = c.Listen(ctx) }()

	require.Eventually(t, func() bool { return buf.Len() >= 1 },
		time.Second, 10*time.Millisecond)

	// Four deliveries, one displayed notification.
	time.Sleep(50 * time.Millisecond)
	visible, overflow := buf.Visible()
	assert.Len(t, visible, 1)
	assert.Equal(t, 0, overflow)
	assert.Equal(t, realtime.EventNewMessage, visible[0].Type)
}

func TestClientDropsMalformedEnvelope(t *testing.T) {
	good := realtime.NewEnvelope(realtime.EventNewRide, "Anna posted a ride", nil, "/rides/1")
	bad := realtime.Envelope{Type: realtime.EventNewRide} // no message text

	srv := fakeEndpoint(t, []realtime.Envelope{bad, good})
	defer srv.Close()

	buf := notify.NewBuffer()
	defer buf.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := Dial(ctx, wsURL(srv), "any-token", buf)
	require.NoError(t, err)
	defer c.Close()

	go func() { _ = c.Listen(ctx) }()

	// The malformed envelope is skipped without killing the loop; the good
	// one behind it still lands.
	require.Eventually(t, func() bool { return buf.Len() == 1 },
		time.Second, 10*time.Millisecond)

	visible, _ := buf.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Anna posted a ride", visible[0].Message)
}

func TestClientJoinRideFrame(t *testing.T) {
	frames := make(chan realtime.Frame, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		var f realtime.Frame
		if err := wsjson.Read(r.Context(), sock, &f); err == nil {
			frames <- f
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	buf := notify.NewBuffer()
	defer buf.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := Dial(ctx, wsURL(srv), "any-token", buf)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.JoinRide(ctx, 42))

	select {
	case f := <-frames:
		assert.Equal(t, realtime.FrameJoinRoom, f.Type)
		assert.Equal(t, uint(42), f.RideID)
	case <-ctx.Done():
		t.Fatal("server never received the join frame")
	}
}
