// Package identity is the store of registered players. It answers the
// existence and lookup queries the game engine and projections depend on.
package identity

import (
	"blokus/backend/internal/game"
	"blokus/backend/internal/models"

	"gorm.io/gorm"
)

// Store is the GORM-backed directory over registered users.
type Store struct {
	db *gorm.DB
}

// NewStore wraps the database connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Exists reports whether a user with the given id is registered.
func (s *Store) Exists(userID uint) bool {
	var count int64
	s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count)
	return count > 0
}

// Player returns the player's identity data.
func (s *Store) Player(userID uint) (game.Player, bool) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return game.Player{}, false
	}
	return game.Player{ID: user.ID, Name: user.Nickname}, true
}
