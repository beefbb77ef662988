package game_test

import (
	"sync"
	"testing"

	"blokus/backend/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryUnknownMatch(t *testing.T) {
	repo := game.NewRepository()

	_, err := repo.FindMatch(42)
	assert.ErrorIs(t, err, game.ErrMatchNotFound)

	_, err = repo.Memberships(42)
	assert.ErrorIs(t, err, game.ErrMatchNotFound)

	err = repo.MutateMatch(42, func(m *game.Match) error { return nil })
	assert.ErrorIs(t, err, game.ErrMatchNotFound)

	err = repo.MutateMembership(42, 1, func(gu *game.Membership) error { return nil })
	assert.ErrorIs(t, err, game.ErrMatchNotFound)

	assert.False(t, repo.IsMember(42, 1))
}

func TestRepositoryReadAfterWrite(t *testing.T) {
	repo := game.NewRepository()
	m := repo.CreateMatch("table", 4, 1)

	require.NoError(t, repo.MutateMatch(m.ID, func(m *game.Match) error {
		m.Name = "renamed"
		return nil
	}))

	snap, err := repo.FindMatch(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", snap.Name)
}

func TestRepositoryIDsAreMonotonic(t *testing.T) {
	repo := game.NewRepository()
	a := repo.CreateMatch("a", 4, 1)
	b := repo.CreateMatch("b", 4, 1)
	assert.Greater(t, b.ID, a.ID)
}

func TestMutateMembershipUnknownUser(t *testing.T) {
	repo := game.NewRepository()
	m := repo.CreateMatch("table", 4, 1)
	err := repo.MutateMembership(m.ID, 99, func(gu *game.Membership) error { return nil })
	assert.ErrorIs(t, err, game.ErrNotMember)
}

func TestEmptyingMutationDestroysMatch(t *testing.T) {
	repo := game.NewRepository()
	m := repo.CreateMatch("table", 4, 1)

	require.NoError(t, repo.MutateMatch(m.ID, func(mm *game.Match) error {
		mm.RemoveMember(1)
		return nil
	}))

	_, err := repo.FindMatch(m.ID)
	assert.ErrorIs(t, err, game.ErrMatchNotFound)

	var seen int
	repo.Range(func(*game.Match) { seen++ })
	assert.Zero(t, seen)
}

func TestRangeOrderedByID(t *testing.T) {
	repo := game.NewRepository()
	repo.CreateMatch("a", 4, 1)
	repo.CreateMatch("b", 4, 2)
	repo.CreateMatch("c", 4, 3)

	var ids []uint
	repo.Range(func(m *game.Match) { ids = append(ids, m.ID) })
	require.Len(t, ids, 3)
	assert.IsIncreasing(t, ids)
}

// Mutations on the same match must serialize; a torn read would show a
// partially applied pair of fields.
func TestMutationsAreSerializedPerMatch(t *testing.T) {
	repo := game.NewRepository()
	m := repo.CreateMatch("table", 4, 1)

	const workers = 8
	const rounds = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_ = repo.MutateMatch(m.ID, func(mm *game.Match) error {
					// Write a pair that must always move together.
					mm.MaxPlayers++
					mm.CurrentTurn = uint(mm.MaxPlayers)
					return nil
				})
			}
		}(w)
	}
	wg.Wait()

	snap, err := repo.FindMatch(m.ID)
	require.NoError(t, err)
	assert.Equal(t, 4+workers*rounds, snap.MaxPlayers)
	assert.Equal(t, uint(snap.MaxPlayers), snap.CurrentTurn)
}
