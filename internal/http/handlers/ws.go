package handlers

import (
	"log"
	"net/http"

	"carpool-be/internal/http/middleware"
	"carpool-be/internal/models"
	"carpool-be/internal/realtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type WSHandler struct {
	Hub                  *realtime.Hub
	DB                   *gorm.DB
	JWTSecret            string
	WSInsecureSkipVerify bool
}

// Handle authenticates the handshake, registers the connection and then
// services client frames until disconnect. Browser WebSocket cannot set an
// Authorization header, so the token comes as a query param.
func (h *WSHandler) Handle(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	userID, err := middleware.Parse(tokenStr, h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	// Token may outlive the account. No room join before this passes.
	var u models.User
	if err := h.DB.Select("id").First(&u, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	opts := &websocket.AcceptOptions{}
	// Accept rejects cross-origin by default, which breaks local dev where
	// the frontend runs on another port. Only for dev.
	if h.WSInsecureSkipVerify {
		opts.InsecureSkipVerify = true
	}

	sock, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		return // Accept already wrote the error response
	}

	conn := h.Hub.AddConn(userID, sock)
	defer h.Hub.RemoveConn(conn)

	// Read loop: clients only send room-join frames. A frame we cannot
	// make sense of is logged and skipped, not a reason to drop the
	// connection; a read error means the client went away.
	ctx := c.Request.Context()
	for {
		var f realtime.Frame
		if err := wsjson.Read(ctx, sock, &f); err != nil {
			return
		}

		switch f.Type {
		case realtime.FrameJoinRoom:
			if f.RideID == 0 {
				log.Printf("[ws] user %d sent join_room without ride_id", userID)
				continue
			}
			h.Hub.JoinRide(conn, f.RideID)
		default:
			log.Printf("[ws] user %d sent unknown frame type %q", userID, f.Type)
		}
	}
}
