package game

import (
	"sort"
	"sync"
	"time"
)

// Repository is the in-memory source of truth for live matches and their
// memberships. Mutations against one match are serialized by that match's
// lock; matches never contend with each other. Lock order is always
// repository map lock before entry lock.
type Repository struct {
	mu      sync.RWMutex // guards matches and nextID
	nextID  uint
	matches map[uint]*matchEntry
}

type matchEntry struct {
	mu      sync.Mutex
	match   *Match
	deleted bool // set when the entry has been removed from the map
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{matches: make(map[uint]*matchEntry)}
}

// CreateMatch inserts a new WAITING match with one unready membership for
// the owner and returns a snapshot of it.
func (r *Repository) CreateMatch(name string, maxPlayers int, ownerID uint) Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	m := &Match{
		ID:         r.nextID,
		Name:       name,
		CreatedAt:  time.Now(),
		State:      StateWaiting,
		MaxPlayers: maxPlayers,
		OwnerID:    ownerID,
	}
	m.members = []*Membership{{MatchID: m.ID, UserID: ownerID}}
	r.matches[m.ID] = &matchEntry{match: m}
	return *m
}

func (r *Repository) entry(matchID uint) *matchEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matches[matchID]
}

// MutateMatch runs fn against the match under its lock. The mutation is
// visible to every subsequent call on any goroutine once MutateMatch
// returns. If fn leaves the match with no memberships the match is
// destroyed. Unknown ids fail with ErrMatchNotFound.
func (r *Repository) MutateMatch(matchID uint, fn func(*Match) error) error {
	e := r.entry(matchID)
	if e == nil {
		return ErrMatchNotFound
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return ErrMatchNotFound
	}
	err := fn(e.match)
	empty := err == nil && len(e.match.members) == 0
	e.mu.Unlock()

	if empty {
		r.deleteIfEmpty(matchID, e)
	}
	return err
}

// ViewMatch runs fn against the match under its lock without any deletion
// check. fn must not mutate the match.
func (r *Repository) ViewMatch(matchID uint, fn func(*Match) error) error {
	e := r.entry(matchID)
	if e == nil {
		return ErrMatchNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrMatchNotFound
	}
	return fn(e.match)
}

// MutateMembership runs fn against one membership under the match lock.
func (r *Repository) MutateMembership(matchID, userID uint, fn func(*Membership) error) error {
	return r.MutateMatch(matchID, func(m *Match) error {
		gu := m.member(userID)
		if gu == nil {
			return ErrNotMember
		}
		return fn(gu)
	})
}

// FindMatch returns a snapshot of the match record without its memberships.
func (r *Repository) FindMatch(matchID uint) (Match, error) {
	var snap Match
	err := r.ViewMatch(matchID, func(m *Match) error {
		snap = *m
		snap.members = nil
		return nil
	})
	return snap, err
}

// Memberships returns snapshots of the match's memberships, piece
// inventories included.
func (r *Repository) Memberships(matchID uint) ([]Membership, error) {
	var members []Membership
	err := r.ViewMatch(matchID, func(m *Match) error {
		members = make([]Membership, 0, len(m.members))
		for _, gu := range m.members {
			cp := *gu
			cp.Pieces = append([]Piece(nil), gu.Pieces...)
			members = append(members, cp)
		}
		return nil
	})
	return members, err
}

// IsMember reports whether the player currently holds a membership in the
// match. Used by the fan-out to scope delivery at broadcast time.
func (r *Repository) IsMember(matchID, userID uint) bool {
	ok := false
	_ = r.ViewMatch(matchID, func(m *Match) error {
		ok = m.member(userID) != nil
		return nil
	})
	return ok
}

// Range calls fn for each live match in id order, holding each match's
// lock in turn. fn must not mutate the match.
func (r *Repository) Range(fn func(*Match)) {
	r.mu.RLock()
	ids := make([]uint, 0, len(r.matches))
	for id := range r.matches {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		_ = r.ViewMatch(id, func(m *Match) error {
			fn(m)
			return nil
		})
	}
}

// deleteIfEmpty removes the match if it still has no memberships. A join
// that slipped in between the emptying mutation and this call keeps the
// match alive.
func (r *Repository) deleteIfEmpty(matchID uint, e *matchEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.deleted && len(e.match.members) == 0 {
		e.deleted = true
		delete(r.matches, matchID)
	}
}
