package game_test

import (
	"math/rand"
	"testing"
	"time"

	"blokus/backend/internal/game"
	"blokus/backend/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matchAwareDirectory consults live match state during lookups, the way an
// enriched directory might. Projections must resolve names after releasing
// the match lock or these lookups deadlock.
type matchAwareDirectory struct {
	*identity.Memory
	repo    *game.Repository
	matchID uint
}

func (d *matchAwareDirectory) Player(userID uint) (game.Player, bool) {
	if d.matchID != 0 {
		d.repo.IsMember(d.matchID, userID)
	}
	return d.Memory.Player(userID)
}

func TestListMatchesProjection(t *testing.T) {
	f, players := newFixture(t, 1, 3)
	views := game.NewViews(f.repo, f.users)

	list, err := views.ListMatches()
	require.NoError(t, err)
	assert.Empty(t, list)

	m, err := f.engine.Create("open table", 4, players[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.Join(m.ID, players[1].ID))

	list, err = views.ListMatches()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)
	assert.Equal(t, "open table", list[0].Name)
	assert.Equal(t, game.StateWaiting, list[0].State)
	assert.Equal(t, 4, list[0].MaxPlayers)
	assert.Equal(t, 2, list[0].PlayerCount)
	assert.Equal(t, players[0].ID, list[0].Owner.UserID)
	assert.Equal(t, players[0].Name, list[0].Owner.UserName)
}

func TestDeletedMatchDisappearsFromListing(t *testing.T) {
	f, players := newFixture(t, 1, 1)
	views := game.NewViews(f.repo, f.users)

	m, err := f.engine.Create("fleeting", 4, players[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.Exit(m.ID, players[0].ID))

	list, err := views.ListMatches()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRoomViewListsMembersWithReadyFlags(t *testing.T) {
	f, players := newFixture(t, 1, 2)
	views := game.NewViews(f.repo, f.users)

	m, err := f.engine.Create("room", 4, players[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.Join(m.ID, players[1].ID))
	require.NoError(t, f.engine.Ready(m.ID, players[1].ID))

	view, err := views.Room(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, view.ID)
	assert.Equal(t, players[0].ID, view.Owner.UserID)
	require.Len(t, view.Members, 2)
	assert.False(t, view.Members[0].Ready)
	assert.True(t, view.Members[1].Ready)

	_, err = views.Room(999)
	assert.ErrorIs(t, err, game.ErrMatchNotFound)
}

func TestInMatchViewProjection(t *testing.T) {
	f, players := newFixture(t, 17, 2)
	views := game.NewViews(f.repo, f.users)
	matchID := startedMatch(t, f, players, 4)

	mover := currentTurn(t, f, matchID)
	require.NoError(t, f.engine.PlacePiece(matchID, mover, 0, maskFor(t, 0, 2, 3)))

	view, err := views.InMatch(matchID)
	require.NoError(t, err)

	assert.Equal(t, game.StateOngoing, view.State)
	require.Len(t, view.Board, game.BoardSize)
	for _, row := range view.Board {
		require.Len(t, row, game.BoardSize)
	}
	moverColor := memberColor(t, f, matchID, mover)
	assert.Equal(t, int(moverColor), view.Board[2][3])

	require.Len(t, view.Players, 2)
	for _, p := range view.Players {
		require.Len(t, p.Pieces, game.PieceCount)
		if p.UserID == mover {
			assert.True(t, p.Pieces[0].Used)
			assert.Equal(t, int(moverColor), p.Color)
		}
		for _, piece := range p.Pieces {
			assert.NotEmpty(t, piece.Shape)
		}
	}
	assert.NotEqual(t, mover, view.CurrentTurn)
}

// Identity resolution is a database query in production; it must never run
// while the projection holds the match lock, or every engine operation on
// the match queues behind it.
func TestProjectionsResolveNamesOutsideMatchLock(t *testing.T) {
	f, players := newFixture(t, 1, 2)
	dir := &matchAwareDirectory{Memory: f.users, repo: f.repo}
	views := game.NewViews(f.repo, dir)

	m, err := f.engine.Create("table", 4, players[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.Join(m.ID, players[1].ID))
	dir.matchID = m.ID

	done := make(chan error, 3)
	go func() {
		_, err := views.Room(m.ID)
		done <- err
		_, err = views.InMatch(m.ID)
		done <- err
		_, err = views.ListMatches()
		done <- err
	}()
	for i := 0; i < 3; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("projection resolved identity while holding the match lock")
		}
	}
}

// A membership pointing at a player the identity store no longer knows is
// a repository bug and must surface as an internal consistency error.
func TestProjectionDetectsDanglingPlayer(t *testing.T) {
	users := identity.NewMemory()
	repo := game.NewRepository()
	engine := game.NewEngine(repo, users, nil, rand.New(rand.NewSource(1)))

	ghost := users.Add("ghost")
	m, err := engine.Create("haunted", 4, ghost.ID)
	require.NoError(t, err)

	// Simulate the inconsistency with a directory that lost the player.
	brokenViews := game.NewViews(repo, identity.NewMemory())
	_, err = brokenViews.Room(m.ID)
	assert.ErrorIs(t, err, game.ErrInternalConsistency)
	_, err = brokenViews.InMatch(m.ID)
	assert.ErrorIs(t, err, game.ErrInternalConsistency)
	_, err = brokenViews.ListMatches()
	assert.ErrorIs(t, err, game.ErrInternalConsistency)
}
