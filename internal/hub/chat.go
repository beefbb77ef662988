package hub

import (
	"encoding/json"
	"log"
	"strconv"
	"time"
)

// ChatEventType tags a chat event on the wire.
type ChatEventType string

const (
	ChatJoin       ChatEventType = "JOIN"
	ChatConnect    ChatEventType = "CONNECT"
	ChatDisconnect ChatEventType = "DISCONNECT"
	ChatMessage    ChatEventType = "MESSAGE"
)

// ChatEventPayload is the wire payload of a chat event.
type ChatEventPayload struct {
	UserID    uint   `json:"userId"`
	UserName  string `json:"userName"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ChatEvent is the wire shape of a chat event.
type ChatEvent struct {
	Type    ChatEventType    `json:"type"`
	Payload ChatEventPayload `json:"payload"`
}

// chatChannel is one per-match chat room.
type chatChannel struct {
	sessions map[*Session]struct{}
	history  []json.RawMessage
}

func chatEvent(typ ChatEventType, s *Session, message string) []byte {
	msg, err := json.Marshal(ChatEvent{
		Type: typ,
		Payload: ChatEventPayload{
			UserID:    s.UserID,
			UserName:  s.UserName,
			Message:   message,
			Timestamp: strconv.FormatInt(time.Now().UnixMilli(), 10),
		},
	})
	if err != nil {
		log.Printf("hub: marshal chat event: %v", err)
	}
	return msg
}

// AttachChat registers a session on the global social channel: history is
// replayed, then JOIN and CONNECT announcements go out to everyone.
func (h *Hub) AttachChat(s *Session) {
	h.mu.Lock()
	h.chatSessions[s] = struct{}{}
	for _, msg := range h.chatHistory {
		s.push(msg)
	}
	h.mu.Unlock()

	h.broadcastChat(chatEvent(ChatJoin, s, s.UserName+" joined the chat!"))
	h.broadcastChat(chatEvent(ChatConnect, s, s.UserName+" connected the chat!"))
}

// DetachChat removes the session and announces the disconnect.
func (h *Hub) DetachChat(s *Session) {
	h.mu.Lock()
	delete(h.chatSessions, s)
	h.mu.Unlock()
	s.Close()

	h.broadcastChat(chatEvent(ChatDisconnect, s, s.UserName+" disconnected the chat!"))
}

// SendChat broadcasts a user message on the global channel.
func (h *Hub) SendChat(s *Session, text string) {
	h.broadcastChat(chatEvent(ChatMessage, s, text))
}

func (h *Hub) broadcastChat(msg []byte) {
	if msg == nil {
		return
	}
	h.mu.Lock()
	h.chatHistory = appendBounded(h.chatHistory, msg)
	var broken []*Session
	for s := range h.chatSessions {
		if !s.push(msg) {
			broken = append(broken, s)
		}
	}
	for _, s := range broken {
		delete(h.chatSessions, s)
	}
	h.mu.Unlock()

	for _, s := range broken {
		s.Close()
	}
}

// AttachMatchChat registers a session on a match's chat channel.
func (h *Hub) AttachMatchChat(matchID uint, s *Session) {
	h.mu.Lock()
	ch := h.matchChat[matchID]
	if ch == nil {
		ch = &chatChannel{sessions: make(map[*Session]struct{})}
		h.matchChat[matchID] = ch
	}
	ch.sessions[s] = struct{}{}
	for _, msg := range ch.history {
		s.push(msg)
	}
	h.mu.Unlock()

	h.broadcastMatchChat(matchID, chatEvent(ChatJoin, s, s.UserName+" joined the chat!"))
	h.broadcastMatchChat(matchID, chatEvent(ChatConnect, s, s.UserName+" connected the chat!"))
}

// DetachMatchChat removes the session from the match channel; an emptied
// channel keeps its history until the match itself is destroyed.
func (h *Hub) DetachMatchChat(matchID uint, s *Session) {
	h.mu.Lock()
	if ch := h.matchChat[matchID]; ch != nil {
		delete(ch.sessions, s)
	}
	h.mu.Unlock()
	s.Close()

	h.broadcastMatchChat(matchID, chatEvent(ChatDisconnect, s, s.UserName+" disconnected the chat!"))
}

// SendMatchChat broadcasts a user message on the match channel.
func (h *Hub) SendMatchChat(matchID uint, s *Session, text string) {
	h.broadcastMatchChat(matchID, chatEvent(ChatMessage, s, text))
}

// broadcastMatchChat delivers to sessions on the channel whose user is a
// member of the match at broadcast time.
func (h *Hub) broadcastMatchChat(matchID uint, msg []byte) {
	if msg == nil {
		return
	}
	h.mu.Lock()
	ch := h.matchChat[matchID]
	if ch == nil {
		// Channel already purged with its match; nothing to deliver.
		h.mu.Unlock()
		return
	}
	ch.history = appendBounded(ch.history, msg)
	var broken []*Session
	for s := range ch.sessions {
		if !h.members.IsMember(matchID, s.UserID) {
			continue
		}
		if !s.push(msg) {
			broken = append(broken, s)
		}
	}
	for _, s := range broken {
		delete(ch.sessions, s)
	}
	h.mu.Unlock()

	for _, s := range broken {
		s.Close()
	}
}
