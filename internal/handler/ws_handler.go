package handler

import (
	"log"
	"net/http"

	"blokus/backend/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens via token; the browser origin is not meaningful here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func upgradeSession(c *gin.Context) (*hub.Session, bool) {
	userID, _ := c.Get("userID")
	player, ok := users.Player(userID.(uint))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return nil, false
	}
	return hub.NewSession(conn, player.ID, player.Name), true
}

// readLoop drains incoming frames until the connection drops, passing text
// frames to onText (which may be nil).
func readLoop(s *hub.Session, conn *websocket.Conn, onText func(string)) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType == websocket.TextMessage && onText != nil {
			onText(string(data))
		}
	}
}

// MatchRoomSocket godoc
// @Summary      Match room websocket
// @Description  Subscribes to a match's realtime events (CONNECT, DISCONNECT, MATCH_STARTED, STATE_UPDATED). The last 50 events are replayed on attach.
// @Tags         realtime
// @Security     BearerAuth
// @Param        id    path  int    true  "Match ID"
// @Param        token query string false "JWT for browser clients"
// @Router       /matches/{id}/room [get]
func MatchRoomSocket(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	s, ok := upgradeSession(c)
	if !ok {
		return
	}
	go s.WritePump()

	liveHub.AttachRoom(matchID, s)
	readLoop(s, s.Conn(), nil)
	liveHub.DetachRoom(matchID, s)
}

// MatchChatSocket godoc
// @Summary      Match chat websocket
// @Description  Joins the match's chat channel. The last 50 messages are replayed on attach; every text frame is broadcast to current members.
// @Tags         realtime
// @Security     BearerAuth
// @Param        id    path  int    true  "Match ID"
// @Param        token query string false "JWT for browser clients"
// @Router       /matches/{id}/chat [get]
func MatchChatSocket(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	s, ok := upgradeSession(c)
	if !ok {
		return
	}
	go s.WritePump()

	liveHub.AttachMatchChat(matchID, s)
	readLoop(s, s.Conn(), func(text string) {
		liveHub.SendMatchChat(matchID, s, text)
	})
	liveHub.DetachMatchChat(matchID, s)
}

// GlobalChatSocket godoc
// @Summary      Global chat websocket
// @Description  Joins the game-wide social channel shared by all connected players.
// @Tags         realtime
// @Security     BearerAuth
// @Param        token query string false "JWT for browser clients"
// @Router       /chat [get]
func GlobalChatSocket(c *gin.Context) {
	s, ok := upgradeSession(c)
	if !ok {
		return
	}
	// Display names on the global channel carry a random suffix so the
	// same account connected twice is distinguishable.
	s.UserName = s.UserName + "-" + uuid.NewString()[:8]
	go s.WritePump()

	liveHub.AttachChat(s)
	readLoop(s, s.Conn(), func(text string) {
		liveHub.SendChat(s, text)
	})
	liveHub.DetachChat(s)
}
