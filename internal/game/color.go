package game

// Color is a board cell mark. The zero value means the cell is empty; the
// numeric codes are part of the wire format and must stay stable.
type Color int

const (
	ColorEmpty  Color = 0
	ColorRed    Color = 1
	ColorBlue   Color = 2
	ColorGreen  Color = 3
	ColorYellow Color = 4
)

// Palette is the fixed set of colors assignable to members of one match,
// in assignment order. A match can therefore hold at most len(Palette)
// players.
var Palette = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// TurnCycle is the fixed rotation order for turns once a match is ongoing.
// It is independent of join order and of assignment order.
var TurnCycle = []Color{ColorBlue, ColorYellow, ColorRed, ColorGreen}

func (c Color) String() string {
	switch c {
	case ColorEmpty:
		return "EMPTY"
	case ColorRed:
		return "RED"
	case ColorBlue:
		return "BLUE"
	case ColorGreen:
		return "GREEN"
	case ColorYellow:
		return "YELLOW"
	}
	return "UNKNOWN"
}

// cycleRank returns the color's position in TurnCycle.
func cycleRank(c Color) int {
	for i, tc := range TurnCycle {
		if tc == c {
			return i
		}
	}
	return len(TurnCycle)
}
