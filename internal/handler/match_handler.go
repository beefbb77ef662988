package handler

import (
	"errors"
	"net/http"
	"strconv"

	"blokus/backend/internal/game"
	"blokus/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// Package-level collaborators, wired once from main (the hub is a
// process-wide singleton, same as the repository behind the engine).
var (
	engine  *game.Engine
	views   *game.Views
	liveHub *hub.Hub
	users   game.Directory
)

// Init wires the handler package to the engine, projections and fan-out.
func Init(e *game.Engine, v *game.Views, h *hub.Hub, dir game.Directory) {
	engine = e
	views = v
	liveHub = h
	users = dir
}

// region --- DTOs ---

// CreateMatchInput defines the structure for creating a match.
type CreateMatchInput struct {
	Name       string `json:"name" binding:"required" example:"friday night"`
	MaxPlayers int    `json:"maxPlayers" binding:"required,min=2,max=4" example:"4"`
}

// PlacePieceInput defines the structure for placing a piece. The mask is a
// full 20x20 boolean overlay of the board cells the piece would occupy.
type PlacePieceInput struct {
	PieceIndex *int     `json:"pieceIndex" binding:"required"`
	Mask       [][]bool `json:"mask" binding:"required"`
}

// endregion

// statusForError maps engine errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrMatchNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, game.ErrPieceNotFound), errors.Is(err, game.ErrMaskShape), errors.Is(err, game.ErrBadCapacity):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInternalConsistency):
		return http.StatusInternalServerError
	default:
		// Lobby and turn rule violations: full, already started/joined,
		// not enough players, not all ready, not your turn, piece used,
		// overlap, not ongoing.
		return http.StatusConflict
	}
}

func abortEngineError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func matchIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid match ID"})
		return 0, false
	}
	return uint(id), true
}

// ListMatches godoc
// @Summary      List matches
// @Description  Returns the public lobby list of all live matches.
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} game.LobbySummary
// @Failure      401 {object} ErrorResponse
// @Router       /matches [get]
func ListMatches(c *gin.Context) {
	list, err := views.ListMatches()
	if err != nil {
		abortEngineError(c, err)
		return
	}
	if list == nil {
		list = []game.LobbySummary{}
	}
	c.JSON(http.StatusOK, list)
}

// CreateMatch godoc
// @Summary      Create a match
// @Description  Creates a new match in WAITING state with the caller as owner and only member.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateMatchInput true "Match Info"
// @Success      201 {object} game.LobbySummary
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /matches [post]
func CreateMatch(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input CreateMatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := engine.Create(input.Name, input.MaxPlayers, userID.(uint))
	if err != nil {
		abortEngineError(c, err)
		return
	}

	owner, _ := users.Player(m.OwnerID)
	c.JSON(http.StatusCreated, game.LobbySummary{
		ID:          m.ID,
		Name:        m.Name,
		State:       m.State,
		MaxPlayers:  m.MaxPlayers,
		PlayerCount: 1,
		Owner:       game.PlayerRef{UserID: owner.ID, UserName: owner.Name},
		CreatedAt:   m.CreatedAt,
	})
}

// GetRoomView godoc
// @Summary      Get a match room
// @Description  Returns the membership list and ready flags for one match.
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} game.RoomView
// @Failure      404 {object} ErrorResponse
// @Router       /matches/{id} [get]
func GetRoomView(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	view, err := views.Room(matchID)
	if err != nil {
		abortEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetInMatchView godoc
// @Summary      Get the in-match view
// @Description  Returns the board, member colors and inventories, and the current-turn player.
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} game.InMatchView
// @Failure      404 {object} ErrorResponse
// @Router       /matches/{id}/game [get]
func GetInMatchView(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	view, err := views.InMatch(matchID)
	if err != nil {
		abortEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// JoinMatch godoc
// @Summary      Join a match
// @Description  Joins a WAITING match that has a free slot.
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} map[string]string "{"message": "Joined match successfully"}"
// @Failure      404 {object} ErrorResponse "Match not found"
// @Failure      409 {object} ErrorResponse "Match is full or already started"
// @Router       /matches/{id}/join [post]
func JoinMatch(c *gin.Context) {
	userID, _ := c.Get("userID")
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	if err := engine.Join(matchID, userID.(uint)); err != nil {
		abortEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined match successfully"})
}

// ExitMatch godoc
// @Summary      Exit a match
// @Description  Leaves the match in any state. The last member leaving deletes the match; a departing owner hands ownership to a remaining member.
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} map[string]string "{"message": "Left match successfully"}"
// @Failure      403 {object} ErrorResponse "Caller is not a member"
// @Failure      404 {object} ErrorResponse "Match not found"
// @Router       /matches/{id}/exit [post]
func ExitMatch(c *gin.Context) {
	userID, _ := c.Get("userID")
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	if err := engine.Exit(matchID, userID.(uint)); err != nil {
		abortEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left match successfully"})
}

// ReadyMatch godoc
// @Summary      Mark the caller ready
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} map[string]string "{"message": "Ready"}"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /matches/{id}/ready [post]
func ReadyMatch(c *gin.Context) {
	userID, _ := c.Get("userID")
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	if err := engine.Ready(matchID, userID.(uint)); err != nil {
		abortEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ready"})
}

// UnreadyMatch godoc
// @Summary      Clear the caller's ready flag
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} map[string]string "{"message": "Unready"}"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /matches/{id}/unready [post]
func UnreadyMatch(c *gin.Context) {
	userID, _ := c.Get("userID")
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	if err := engine.Unready(matchID, userID.(uint)); err != nil {
		abortEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unready"})
}

// StartMatch godoc
// @Summary      Start a match
// @Description  Starts the match: assigns colors and piece inventories, draws the first turn and broadcasts MATCH_STARTED.
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} game.InMatchView
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Not enough players or not all ready"
// @Router       /matches/{id}/start [post]
func StartMatch(c *gin.Context) {
	userID, _ := c.Get("userID")
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	if err := engine.Start(matchID, userID.(uint)); err != nil {
		abortEngineError(c, err)
		return
	}
	view, err := views.InMatch(matchID)
	if err != nil {
		abortEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PlacePiece godoc
// @Summary      Place a piece
// @Description  Places one of the caller's unused pieces according to the placement mask, advances the turn and broadcasts STATE_UPDATED.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int true "Match ID"
// @Param        input body PlacePieceInput true "Placement"
// @Success      200 {object} game.InMatchView
// @Failure      400 {object} ErrorResponse "Bad piece index or malformed mask"
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Not your turn, piece used or overlap"
// @Router       /matches/{id}/place [post]
func PlacePiece(c *gin.Context) {
	userID, _ := c.Get("userID")
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}

	var input PlacePieceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mask, ok := maskFromRows(input.Mask)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mask must be a 20x20 boolean grid"})
		return
	}

	if err := engine.PlacePiece(matchID, userID.(uint), *input.PieceIndex, mask); err != nil {
		abortEngineError(c, err)
		return
	}
	view, err := views.InMatch(matchID)
	if err != nil {
		abortEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func maskFromRows(rows [][]bool) (*game.Mask, bool) {
	if len(rows) != game.BoardSize {
		return nil, false
	}
	var mask game.Mask
	for r, row := range rows {
		if len(row) != game.BoardSize {
			return nil, false
		}
		for c, cell := range row {
			mask[r][c] = cell
		}
	}
	return &mask, true
}
