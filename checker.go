package bgrules

// Color identifies the owner of a checker.
type Color int8

const (
	NoColor Color = iota
	White
	Black
)

// Direction returns +1 for White, which travels from point 24 toward point 1,
// and -1 for Black, which travels from point 1 toward point 24.
func (c Color) Direction() int {
	switch c {
	case White:
		return 1
	case Black:
		return -1
	default:
		return 0
	}
}

func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ColorForDirection returns the color travelling in the provided direction.
func ColorForDirection(direction int) Color {
	switch direction {
	case 1:
		return White
	case -1:
		return Black
	default:
		return NoColor
	}
}

// Unassigned is the position of a checker which has not been placed on the board.
const Unassigned = -1

type Checker struct {
	color    Color
	position int
}

func newChecker(color Color) *Checker {
	return &Checker{
		color:    color,
		position: Unassigned,
	}
}

func (c *Checker) Color() Color {
	return c.color
}

func (c *Checker) Position() int {
	return c.position
}

func (c *Checker) OnBar() bool {
	return c.position == SpaceBar
}

func (c *Checker) BorneOff() bool {
	return c.position == SpaceOff
}
