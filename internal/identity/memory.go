package identity

import (
	"sync"

	"blokus/backend/internal/game"
)

// Memory is an in-memory directory used in tests and anywhere a database
// is not wanted.
type Memory struct {
	mu      sync.RWMutex
	nextID  uint
	players map[uint]game.Player
}

// NewMemory returns an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{players: make(map[uint]game.Player)}
}

// Add registers a player under a fresh id and returns it.
func (m *Memory) Add(name string) game.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p := game.Player{ID: m.nextID, Name: name}
	m.players[p.ID] = p
	return p
}

// Exists reports whether the id is registered.
func (m *Memory) Exists(userID uint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.players[userID]
	return ok
}

// Player returns the player's identity data.
func (m *Memory) Player(userID uint) (game.Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[userID]
	return p, ok
}
