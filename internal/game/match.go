package game

import "time"

// BoardSize is the side length of the square board.
const BoardSize = 20

// Board is the shared grid of cell marks. Cells hold ColorEmpty or the
// color of the member that occupied them.
type Board [BoardSize][BoardSize]Color

// Mask is a board-sized boolean overlay describing which cells a move
// would occupy. Clients submit the full overlay per move.
type Mask [BoardSize][BoardSize]bool

// Cells returns the number of marked cells.
func (m *Mask) Cells() int {
	n := 0
	for r := range m {
		for c := range m[r] {
			if m[r][c] {
				n++
			}
		}
	}
	return n
}

// State is a match lifecycle state.
type State string

const (
	StateWaiting State = "WAITING"
	StateOngoing State = "ONGOING"
	// StateFinished is entered when every member has used all 21 pieces.
	StateFinished State = "FINISHED"
)

// Match is one board game session. All fields are guarded by the
// repository's per-match lock; nothing outside the repository mutates them.
type Match struct {
	ID          uint
	Name        string
	CreatedAt   time.Time
	State       State
	MaxPlayers  int
	OwnerID     uint
	CurrentTurn uint // player id, set once the match is ongoing
	Board       Board

	members []*Membership
}

// Membership is one player's participation record within a match.
type Membership struct {
	MatchID uint
	UserID  uint
	Ready   bool
	Color   Color // set once, at start
	Pieces  []Piece
}

// RemoveMember drops the player's membership. It reports whether a
// membership was removed. Callers run inside a repository mutation.
func (m *Match) RemoveMember(userID uint) bool {
	for i, gu := range m.members {
		if gu.UserID == userID {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Match) member(userID uint) *Membership {
	for _, gu := range m.members {
		if gu.UserID == userID {
			return gu
		}
	}
	return nil
}
