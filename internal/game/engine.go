package game

import (
	"math/rand"
	"sort"
	"sync"
)

// Player is the slice of identity data the engine and projections need.
type Player struct {
	ID   uint
	Name string
}

// Directory answers identity lookups. The production implementation sits
// in internal/identity; tests supply an in-memory one.
type Directory interface {
	Exists(userID uint) bool
	Player(userID uint) (Player, bool)
}

// Notifier receives engine events after the triggering mutation has
// committed. The hub implements it; tests use a recording stub.
type Notifier interface {
	MatchStarted(matchID uint)
	StateUpdated(matchID uint)
	MatchDestroyed(matchID uint)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) MatchStarted(uint)   {}
func (NopNotifier) StateUpdated(uint)   {}
func (NopNotifier) MatchDestroyed(uint) {}

// Engine drives a match from creation through lobby, start and per-turn
// placement. It owns every legality and turn-order rule; all state lives
// in the repository.
type Engine struct {
	repo     *Repository
	users    Directory
	notifier Notifier

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine builds an engine around the repository. The random source
// drives first-turn selection; inject a seeded one in tests.
func NewEngine(repo *Repository, users Directory, notifier Notifier, rng *rand.Rand) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{repo: repo, users: users, notifier: notifier, rng: rng}
}

// Repo exposes the underlying repository for projections and fan-out
// membership checks.
func (e *Engine) Repo() *Repository { return e.repo }

// Create opens a new WAITING match owned by ownerID, with the owner as its
// only (unready) member.
func (e *Engine) Create(name string, maxPlayers int, ownerID uint) (Match, error) {
	if !e.users.Exists(ownerID) {
		return Match{}, ErrPlayerNotFound
	}
	// The color palette bounds how many players one match can seat.
	if maxPlayers < 2 || maxPlayers > len(Palette) {
		return Match{}, ErrBadCapacity
	}
	return e.repo.CreateMatch(name, maxPlayers, ownerID), nil
}

// Join adds the player to a WAITING match with a free slot.
func (e *Engine) Join(matchID, userID uint) error {
	return e.repo.MutateMatch(matchID, func(m *Match) error {
		if m.State != StateWaiting {
			return ErrAlreadyStarted
		}
		if len(m.members) >= m.MaxPlayers {
			return ErrMatchFull
		}
		if m.member(userID) != nil {
			return ErrAlreadyJoined
		}
		m.members = append(m.members, &Membership{MatchID: matchID, UserID: userID})
		return nil
	})
}

// Ready marks the member ready.
func (e *Engine) Ready(matchID, userID uint) error {
	return e.repo.MutateMembership(matchID, userID, func(gu *Membership) error {
		gu.Ready = true
		return nil
	})
}

// Unready clears the member's ready flag.
func (e *Engine) Unready(matchID, userID uint) error {
	return e.repo.MutateMembership(matchID, userID, func(gu *Membership) error {
		gu.Ready = false
		return nil
	})
}

// Exit removes the player from the match, in any lifecycle state. The last
// member leaving destroys the match. A departing owner hands ownership to
// one of the remaining members of the same match; if the departing player
// held the turn, the turn advances along the color cycle first.
func (e *Engine) Exit(matchID, userID uint) error {
	ongoing := false
	err := e.repo.MutateMatch(matchID, func(m *Match) error {
		gu := m.member(userID)
		if gu == nil {
			return ErrNotMember
		}

		m.RemoveMember(userID)

		if len(m.members) > 0 {
			if m.OwnerID == userID {
				m.OwnerID = m.members[0].UserID
			}
			if m.State == StateOngoing && m.CurrentTurn == userID {
				m.CurrentTurn = m.nextTurn(gu.Color)
			}
			ongoing = m.State == StateOngoing
		}
		return nil
	})
	if err != nil {
		return err
	}
	// The repository destroys an emptied match; confirm before telling
	// listeners, since a concurrent join may have kept it alive.
	if _, ferr := e.repo.FindMatch(matchID); ferr != nil {
		e.notifier.MatchDestroyed(matchID)
		return nil
	}
	if ongoing {
		e.notifier.StateUpdated(matchID)
	}
	return nil
}

// Start transitions the match to ONGOING: at least two members, every
// non-owner member ready (the owner is marked ready implicitly), colors
// assigned from the fixed palette, full piece inventories dealt, and the
// first turn drawn uniformly among members.
func (e *Engine) Start(matchID, requesterID uint) error {
	err := e.repo.MutateMatch(matchID, func(m *Match) error {
		if m.State != StateWaiting {
			return ErrAlreadyStarted
		}
		owner := m.member(m.OwnerID)
		if owner == nil {
			return ErrInternalConsistency
		}
		if len(m.members) < 2 {
			return ErrNotEnoughPlayers
		}
		// Check readiness before flipping the owner's flag so a failed
		// start leaves every membership untouched.
		for _, gu := range m.members {
			if gu.UserID != m.OwnerID && !gu.Ready {
				return ErrNotAllReady
			}
		}
		owner.Ready = true

		for i, gu := range m.members {
			gu.Color = Palette[i]
			gu.Pieces = NewInventory(gu.Color)
		}

		e.rngMu.Lock()
		first := m.members[e.rng.Intn(len(m.members))]
		e.rngMu.Unlock()
		m.CurrentTurn = first.UserID
		m.State = StateOngoing
		return nil
	})
	if err != nil {
		return err
	}
	e.notifier.MatchStarted(matchID)
	return nil
}

// PlacePiece places one of the member's unused pieces according to the
// board-sized placement mask. The whole legality scan runs before any cell
// is written; on failure the board, the inventory and the turn are
// untouched.
func (e *Engine) PlacePiece(matchID, userID uint, pieceIndex int, mask *Mask) error {
	err := e.repo.MutateMatch(matchID, func(m *Match) error {
		if m.State != StateOngoing {
			return ErrNotOngoing
		}
		gu := m.member(userID)
		if gu == nil {
			return ErrNotMember
		}
		if m.CurrentTurn != userID {
			return ErrNotYourTurn
		}
		if pieceIndex < 0 || pieceIndex >= len(gu.Pieces) {
			return ErrPieceNotFound
		}
		piece := &gu.Pieces[pieceIndex]
		if piece.Used {
			return ErrPieceAlreadyUsed
		}

		shape, _ := PieceShape(pieceIndex)
		if mask.Cells() != shape.Cells() {
			return ErrMaskShape
		}
		for r := range mask {
			for c := range mask[r] {
				if mask[r][c] && m.Board[r][c] != ColorEmpty {
					return ErrOverlap
				}
			}
		}

		for r := range mask {
			for c := range mask[r] {
				if mask[r][c] {
					m.Board[r][c] = gu.Color
				}
			}
		}
		piece.Used = true
		m.CurrentTurn = m.nextTurn(gu.Color)

		if m.allPiecesUsed() {
			m.State = StateFinished
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.notifier.StateUpdated(matchID)
	return nil
}

// nextTurn returns the user id of the member following the given color in
// the fixed cycle BLUE, YELLOW, RED, GREEN, restricted to current members
// and wrapping.
func (m *Match) nextTurn(from Color) uint {
	ordered := append([]*Membership(nil), m.members...)
	sort.Slice(ordered, func(i, j int) bool {
		return cycleRank(ordered[i].Color) < cycleRank(ordered[j].Color)
	})
	next := ordered[0]
	for _, gu := range ordered {
		if cycleRank(gu.Color) > cycleRank(from) {
			next = gu
			break
		}
	}
	return next.UserID
}

func (m *Match) allPiecesUsed() bool {
	for _, gu := range m.members {
		for _, p := range gu.Pieces {
			if !p.Used {
				return false
			}
		}
	}
	return true
}
