package hub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sendBuffer is the per-session outbound queue length. A session that
// cannot drain this many events is considered broken and dropped.
const sendBuffer = 16

// Session is one live websocket connection of an authenticated user.
type Session struct {
	ID       string
	UserID   uint
	UserName string

	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewSession wraps an upgraded connection. The caller must run WritePump
// in its own goroutine.
func NewSession(conn *websocket.Conn, userID uint, userName string) *Session {
	return &Session{
		ID:       uuid.NewString()[:8],
		UserID:   userID,
		UserName: userName,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

// Conn exposes the underlying connection for the caller's read loop.
func (s *Session) Conn() *websocket.Conn { return s.conn }

// WritePump drains the send queue onto the wire until the session closes.
func (s *Session) WritePump() {
	defer s.conn.Close()
	for msg := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// push queues a message without blocking. It reports false when the
// session's buffer is full, which marks the session as broken.
func (s *Session) push(msg []byte) bool {
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

// Close shuts the send queue, which ends WritePump and closes the
// connection. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() { close(s.send) })
}
