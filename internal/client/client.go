// Package client is a Go consumer of the realtime endpoint: it dials with a
// bearer token, joins ride conversation rooms, and pipes incoming envelopes
// through a dedup buffer. The browser client does the same thing in JS; this
// one exists for Go callers and for exercising the pipeline end to end.
package client

import (
	"context"
	"fmt"
	"log"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"carpool-be/internal/notify"
	"carpool-be/internal/realtime"
)

type Client struct {
	sock *websocket.Conn
	buf  *notify.Buffer
}

// Dial connects and authenticates. The token travels as a query param, same
// constraint as the browser: the native WebSocket handshake cannot carry an
// Authorization header.
func Dial(ctx context.Context, baseURL, token string, buf *notify.Buffer) (*Client, error) {
	sock, _, err := websocket.Dial(ctx, fmt.Sprintf("%s?token=%s", baseURL, token), nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}
	return &Client{sock: sock, buf: buf}, nil
}

// JoinRide subscribes to a ride's conversation room. No acknowledgment is
// expected; joining twice is harmless.
func (c *Client) JoinRide(ctx context.Context, rideID uint) error {
	return wsjson.Write(ctx, c.sock, realtime.Frame{Type: realtime.FrameJoinRoom, RideID: rideID})
}

// Listen reads envelopes until the context ends or the connection drops.
// A malformed envelope is dropped and logged; it never kills the loop.
func (c *Client) Listen(ctx context.Context) error {
	for {
		var ev realtime.Envelope
		if err := wsjson.Read(ctx, c.sock, &ev); err != nil {
			return err
		}
		if !ev.Valid() {
			log.Printf("[client] dropping malformed envelope (type=%q)", ev.Type)
			continue
		}
		c.buf.Ingest(ev)
	}
}

// Buffer exposes the display queue backing this client.
func (c *Client) Buffer() *notify.Buffer {
	return c.buf
}

func (c *Client) Close() error {
	return c.sock.Close(websocket.StatusNormalClosure, "bye")
}
