package game

import "errors"

// Engine errors. Handlers map these to HTTP status codes with errors.Is;
// none of them is retryable by the engine itself.
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrBadCapacity      = errors.New("capacity must be between 2 and 4")
	ErrNotMember        = errors.New("player is not a member of the match")
	ErrAlreadyJoined    = errors.New("player is already in the match")
	ErrMatchFull        = errors.New("match is full")
	ErrAlreadyStarted   = errors.New("match has already started")
	ErrNotEnoughPlayers = errors.New("not enough players to start the match")
	ErrNotAllReady      = errors.New("not all players are ready")
	ErrNotOngoing       = errors.New("match is not ongoing")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrPieceNotFound    = errors.New("piece not found")
	ErrPieceAlreadyUsed = errors.New("piece already used")
	ErrOverlap          = errors.New("piece cannot be placed on occupied cells")
	ErrMaskShape        = errors.New("placement mask does not match the piece shape")

	// ErrInternalConsistency marks a projection that references an entity
	// missing from the identity store or the repository. It indicates a
	// repository bug, never bad user input.
	ErrInternalConsistency = errors.New("internal consistency violation")
)
