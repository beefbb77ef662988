package game

// Shape is a small boolean grid describing a polyomino footprint.
type Shape [][]bool

// Cells returns the number of occupied cells in the shape.
func (s Shape) Cells() int {
	n := 0
	for _, row := range s {
		for _, cell := range row {
			if cell {
				n++
			}
		}
	}
	return n
}

// PieceCount is the size of the catalog every member receives at start.
const PieceCount = 21

// catalog holds the 21 fixed piece shapes, addressed by index 0..20.
// Shapes are never mutated.
var catalog = [PieceCount]Shape{
	{ // 0: monomino
		{true},
	},
	{ // 1: domino
		{true, true},
	},
	{ // 2: L tromino
		{false, true},
		{true, true},
	},
	{ // 3: I tromino
		{true, true, true},
	},
	{ // 4: I tetromino
		{true, true, true, true},
	},
	{ // 5: L tetromino
		{false, false, true},
		{true, true, true},
	},
	{ // 6: S tetromino
		{true, true, false},
		{false, true, true},
	},
	{ // 7: O tetromino
		{true, true},
		{true, true},
	},
	{ // 8: T tetromino
		{true, true, true},
		{false, true, false},
	},
	{ // 9: F pentomino
		{false, true, true},
		{true, true, false},
		{false, true, false},
	},
	{ // 10: I pentomino
		{true},
		{true},
		{true},
		{true},
		{true},
	},
	{ // 11: L pentomino
		{true, false},
		{true, false},
		{true, false},
		{true, true},
	},
	{ // 12: N pentomino
		{false, true},
		{true, true},
		{true, false},
		{true, false},
	},
	{ // 13: P pentomino
		{true, true},
		{true, true},
		{true, false},
	},
	{ // 14: T pentomino
		{true, true, true},
		{false, true, false},
		{false, true, false},
	},
	{ // 15: U pentomino
		{true, false, true},
		{true, true, true},
	},
	{ // 16: V pentomino
		{false, false, true},
		{false, false, true},
		{true, true, true},
	},
	{ // 17: W pentomino
		{false, false, true},
		{false, true, true},
		{true, true, false},
	},
	{ // 18: X pentomino
		{false, true, false},
		{true, true, true},
		{false, true, false},
	},
	{ // 19: Y pentomino
		{false, true},
		{true, true},
		{false, true},
		{false, true},
	},
	{ // 20: Z pentomino
		{true, true, false},
		{false, true, false},
		{false, true, true},
	},
}

// PieceShape returns the catalog shape for the given index.
// ok is false when the index is out of range.
func PieceShape(index int) (Shape, bool) {
	if index < 0 || index >= PieceCount {
		return nil, false
	}
	return catalog[index], true
}

// Piece is one catalog entry held by a membership. A piece transitions
// unused -> used exactly once.
type Piece struct {
	Index int
	Color Color
	Used  bool
}

// Overlay renders the piece's shape as a grid of color codes, substituting
// the piece color for occupied cells and ColorEmpty elsewhere.
func (p Piece) Overlay() [][]Color {
	shape := catalog[p.Index]
	overlay := make([][]Color, len(shape))
	for r, row := range shape {
		overlay[r] = make([]Color, len(row))
		for c, cell := range row {
			if cell {
				overlay[r][c] = p.Color
			}
		}
	}
	return overlay
}

// NewInventory builds the full 21-piece catalog stamped with the member's
// color, all unused.
func NewInventory(color Color) []Piece {
	pieces := make([]Piece, PieceCount)
	for i := range pieces {
		pieces[i] = Piece{Index: i, Color: color}
	}
	return pieces
}
