package game

import (
	"fmt"
	"time"
)

// Client-facing projections. Repository state is snapshotted under the
// match lock and identity names are resolved only after the lock is
// released, so directory lookups (a database query in production) never
// block engine mutations. A reference to a player missing from the
// directory is a repository bug and surfaces as ErrInternalConsistency.

// PlayerRef names a player inside a projection.
type PlayerRef struct {
	UserID   uint   `json:"userId"`
	UserName string `json:"userName"`
}

// LobbySummary is the public listing entry for one match.
type LobbySummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	State       State     `json:"state"`
	MaxPlayers  int       `json:"maxPlayers"`
	PlayerCount int       `json:"playerCount"`
	Owner       PlayerRef `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RoomMember is one entry of a room view's member list.
type RoomMember struct {
	PlayerRef
	Ready bool `json:"ready"`
}

// RoomView is the pre-start view of one match.
type RoomView struct {
	ID         uint         `json:"id"`
	Name       string       `json:"name"`
	State      State        `json:"state"`
	MaxPlayers int          `json:"maxPlayers"`
	Owner      PlayerRef    `json:"owner"`
	Members    []RoomMember `json:"members"`
}

// PieceView is one inventory entry rendered for the client: the shape as
// a grid of color codes plus the used flag.
type PieceView struct {
	Index int     `json:"index"`
	Used  bool    `json:"used"`
	Shape [][]int `json:"shape"`
}

// MatchPlayer is one member inside an in-match view.
type MatchPlayer struct {
	PlayerRef
	Color  int         `json:"color"`
	Ready  bool        `json:"ready"`
	Pieces []PieceView `json:"pieces"`
}

// InMatchView is the full in-game projection: board, members with their
// colors and inventories, and the current-turn player.
type InMatchView struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	State       State         `json:"state"`
	MaxPlayers  int           `json:"maxPlayers"`
	OwnerID     uint          `json:"ownerId"`
	CurrentTurn uint          `json:"currentTurnPlayerId"`
	Board       [][]int       `json:"board"`
	Players     []MatchPlayer `json:"players"`
}

// Views builds projections from repository and identity state.
type Views struct {
	repo  *Repository
	users Directory
}

// NewViews wires a projection builder.
func NewViews(repo *Repository, users Directory) *Views {
	return &Views{repo: repo, users: users}
}

func (v *Views) playerRef(userID uint) (PlayerRef, error) {
	p, ok := v.users.Player(userID)
	if !ok {
		return PlayerRef{}, fmt.Errorf("%w: user %d missing from identity store", ErrInternalConsistency, userID)
	}
	return PlayerRef{UserID: p.ID, UserName: p.Name}, nil
}

// ListMatches returns the public lobby list, ordered by match id.
func (v *Views) ListMatches() ([]LobbySummary, error) {
	type row struct {
		summary LobbySummary
		ownerID uint
	}
	var rows []row
	v.repo.Range(func(m *Match) {
		rows = append(rows, row{
			summary: LobbySummary{
				ID:          m.ID,
				Name:        m.Name,
				State:       m.State,
				MaxPlayers:  m.MaxPlayers,
				PlayerCount: len(m.members),
				CreatedAt:   m.CreatedAt,
			},
			ownerID: m.OwnerID,
		})
	})

	out := make([]LobbySummary, 0, len(rows))
	for _, r := range rows {
		owner, err := v.playerRef(r.ownerID)
		if err != nil {
			return nil, err
		}
		r.summary.Owner = owner
		out = append(out, r.summary)
	}
	return out, nil
}

// Room builds the membership view of one match.
func (v *Views) Room(matchID uint) (RoomView, error) {
	var snap Match
	var members []Membership
	err := v.repo.ViewMatch(matchID, func(m *Match) error {
		snap = *m
		snap.members = nil
		members = make([]Membership, 0, len(m.members))
		for _, gu := range m.members {
			cp := *gu
			cp.Pieces = nil
			members = append(members, cp)
		}
		return nil
	})
	if err != nil {
		return RoomView{}, err
	}

	owner, err := v.playerRef(snap.OwnerID)
	if err != nil {
		return RoomView{}, err
	}
	view := RoomView{
		ID:         snap.ID,
		Name:       snap.Name,
		State:      snap.State,
		MaxPlayers: snap.MaxPlayers,
		Owner:      owner,
		Members:    make([]RoomMember, 0, len(members)),
	}
	for _, gu := range members {
		ref, err := v.playerRef(gu.UserID)
		if err != nil {
			return RoomView{}, err
		}
		view.Members = append(view.Members, RoomMember{PlayerRef: ref, Ready: gu.Ready})
	}
	return view, nil
}

// InMatch builds the full in-game projection of one match.
func (v *Views) InMatch(matchID uint) (InMatchView, error) {
	var snap Match
	var members []Membership
	err := v.repo.ViewMatch(matchID, func(m *Match) error {
		snap = *m
		snap.members = nil
		members = make([]Membership, 0, len(m.members))
		for _, gu := range m.members {
			cp := *gu
			cp.Pieces = append([]Piece(nil), gu.Pieces...)
			members = append(members, cp)
		}
		return nil
	})
	if err != nil {
		return InMatchView{}, err
	}

	board := make([][]int, BoardSize)
	for r := range snap.Board {
		board[r] = make([]int, BoardSize)
		for c := range snap.Board[r] {
			board[r][c] = int(snap.Board[r][c])
		}
	}

	players := make([]MatchPlayer, 0, len(members))
	for _, gu := range members {
		ref, err := v.playerRef(gu.UserID)
		if err != nil {
			return InMatchView{}, err
		}
		pieces := make([]PieceView, 0, len(gu.Pieces))
		for _, p := range gu.Pieces {
			overlay := p.Overlay()
			shape := make([][]int, len(overlay))
			for r, row := range overlay {
				shape[r] = make([]int, len(row))
				for c, code := range row {
					shape[r][c] = int(code)
				}
			}
			pieces = append(pieces, PieceView{Index: p.Index, Used: p.Used, Shape: shape})
		}
		players = append(players, MatchPlayer{
			PlayerRef: ref,
			Color:     int(gu.Color),
			Ready:     gu.Ready,
			Pieces:    pieces,
		})
	}

	return InMatchView{
		ID:          snap.ID,
		Name:        snap.Name,
		State:       snap.State,
		MaxPlayers:  snap.MaxPlayers,
		OwnerID:     snap.OwnerID,
		CurrentTurn: snap.CurrentTurn,
		Board:       board,
		Players:     players,
	}, nil
}
