package hub

import (
	"encoding/json"
	"log"
	"sync"

	"blokus/backend/internal/game"
)

// historyLimit bounds the per-channel event history replayed to newly
// attached sessions.
const historyLimit = 50

// RoomEventType tags a match event on the wire.
type RoomEventType string

const (
	RoomConnect      RoomEventType = "CONNECT"
	RoomDisconnect   RoomEventType = "DISCONNECT"
	RoomMatchStarted RoomEventType = "MATCH_STARTED"
	RoomStateUpdated RoomEventType = "STATE_UPDATED"
)

// RoomEventPayload carries the full in-match projection.
type RoomEventPayload struct {
	Match game.InMatchView `json:"match"`
}

// RoomEvent is the wire shape of a match event.
type RoomEvent struct {
	Type    RoomEventType    `json:"type"`
	Payload RoomEventPayload `json:"payload"`
}

// MembershipSource answers whether a player currently holds a membership
// in a match. Delivery scope is derived from it at each broadcast, so a
// player who exits stops receiving events on the next broadcast.
type MembershipSource interface {
	IsMember(matchID, userID uint) bool
}

// Hub fans engine events out to subscribed websocket sessions and keeps a
// bounded history per channel. Delivery is best-effort: a session that
// cannot keep up is dropped, never retried.
type Hub struct {
	members MembershipSource
	views   *game.Views

	mu           sync.Mutex
	roomSessions map[*Session]uint // session -> match it attached to
	roomHistory  map[uint][]json.RawMessage

	chatSessions map[*Session]struct{}
	chatHistory  []json.RawMessage
	matchChat    map[uint]*chatChannel
}

// New builds a hub over the repository's membership view and the
// projection builder.
func New(members MembershipSource, views *game.Views) *Hub {
	return &Hub{
		members:      members,
		views:        views,
		roomSessions: make(map[*Session]uint),
		roomHistory:  make(map[uint][]json.RawMessage),
		chatSessions: make(map[*Session]struct{}),
		matchChat:    make(map[uint]*chatChannel),
	}
}

// AttachRoom registers a session on a match's room channel, replays the
// channel history to it and broadcasts a CONNECT event. The caller owns
// the read loop and must call DetachRoom when it ends.
func (h *Hub) AttachRoom(matchID uint, s *Session) {
	h.mu.Lock()
	h.roomSessions[s] = matchID
	for _, msg := range h.roomHistory[matchID] {
		s.push(msg)
	}
	h.mu.Unlock()

	h.broadcastRoom(matchID, RoomConnect)
}

// DetachRoom removes the session and broadcasts a DISCONNECT event to the
// remaining subscribers.
func (h *Hub) DetachRoom(matchID uint, s *Session) {
	h.mu.Lock()
	delete(h.roomSessions, s)
	h.mu.Unlock()
	s.Close()

	h.broadcastRoom(matchID, RoomDisconnect)
}

// MatchStarted implements game.Notifier.
func (h *Hub) MatchStarted(matchID uint) {
	h.broadcastRoom(matchID, RoomMatchStarted)
}

// StateUpdated implements game.Notifier.
func (h *Hub) StateUpdated(matchID uint) {
	h.broadcastRoom(matchID, RoomStateUpdated)
}

// MatchDestroyed implements game.Notifier: once the last member has left,
// the match's room history and chat channel are dropped so destroyed
// matches do not accumulate over the process lifetime. Sessions still
// attached unwind through their own detach path.
func (h *Hub) MatchDestroyed(matchID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.roomHistory, matchID)
	delete(h.matchChat, matchID)
}

// broadcastRoom projects the match after the triggering mutation has
// committed, appends the event to the match history and pushes it to
// every live session whose user is currently a member of the match.
func (h *Hub) broadcastRoom(matchID uint, typ RoomEventType) {
	view, err := h.views.InMatch(matchID)
	if err != nil {
		// Match already destroyed; nothing to deliver.
		return
	}
	msg, err := json.Marshal(RoomEvent{Type: typ, Payload: RoomEventPayload{Match: view}})
	if err != nil {
		log.Printf("hub: marshal room event: %v", err)
		return
	}

	h.mu.Lock()
	h.roomHistory[matchID] = appendBounded(h.roomHistory[matchID], msg)
	var broken []*Session
	for s := range h.roomSessions {
		if !h.members.IsMember(matchID, s.UserID) {
			continue
		}
		if !s.push(msg) {
			broken = append(broken, s)
		}
	}
	for _, s := range broken {
		delete(h.roomSessions, s)
	}
	h.mu.Unlock()

	for _, s := range broken {
		s.Close()
	}
}

// appendBounded keeps only the last historyLimit entries.
func appendBounded(history []json.RawMessage, msg json.RawMessage) []json.RawMessage {
	history = append(history, msg)
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	return history
}
