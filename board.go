package bgrules

import (
	"errors"
	"fmt"
)

// 1-24 for the playable points, 0 for the bar and 25 for checkers borne off.
const (
	SpaceBar = 0
	SpaceOff = 25
)

const NumSpaces = 26

const CheckersPerColor = 15

var ErrInvalidBoard = errors.New("invalid board")

var startingPosition = []struct {
	space int
	color Color
	count int
}{
	{24, White, 2},
	{13, White, 5},
	{8, White, 3},
	{6, White, 5},
	{1, Black, 2},
	{12, Black, 5},
	{17, Black, 3},
	{19, Black, 5},
}

// Board holds every checker of both colors. Checkers are never created or
// destroyed after the starting position is set up, they only change spaces.
type Board struct {
	spaces [NumSpaces][]*Checker
}

func NewBoard() *Board {
	b := &Board{}
	for _, p := range startingPosition {
		b.place(p.space, p.color, p.count)
	}
	return b
}

func (b *Board) place(space int, color Color, count int) {
	for i := 0; i < count; i++ {
		b.land(space, newChecker(color))
	}
}

func (b *Board) land(space int, c *Checker) {
	c.position = space
	b.spaces[space] = append(b.spaces[space], c)
}

// take removes the most recently placed checker of the provided color from a space.
func (b *Board) take(space int, color Color) *Checker {
	checkers := b.spaces[space]
	for i := len(checkers) - 1; i >= 0; i-- {
		if checkers[i].color != color {
			continue
		}
		c := checkers[i]
		b.spaces[space] = append(checkers[:i], checkers[i+1:]...)
		c.position = Unassigned
		return c
	}
	return nil
}

// ValidSpace returns whether the provided space exists on the board.
func ValidSpace(space int) bool {
	return space >= SpaceBar && space <= SpaceOff
}

// PlayableSpace returns whether the provided space is one of the 24 points.
func PlayableSpace(space int) bool {
	return space > SpaceBar && space < SpaceOff
}

// HomeRange returns the first and last point of the home quadrant of a color.
func HomeRange(color Color) (from int, to int) {
	if color == Black {
		return 19, 24
	}
	return 1, 6
}

func inHome(space int, color Color) bool {
	from, to := HomeRange(color)
	return space >= from && space <= to
}

// CheckersAt returns the checkers at a space. Spaces outside of the board are empty.
func (b *Board) CheckersAt(space int) []*Checker {
	if !ValidSpace(space) {
		return nil
	}
	checkers := make([]*Checker, len(b.spaces[space]))
	copy(checkers, b.spaces[space])
	return checkers
}

// ColorAt returns the color of the first checker at a space.
func (b *Board) ColorAt(space int) Color {
	if !ValidSpace(space) || len(b.spaces[space]) == 0 {
		return NoColor
	}
	return b.spaces[space][0].color
}

func (b *Board) countAt(space int, color Color) int {
	var count int
	for _, c := range b.spaces[space] {
		if c.color == color {
			count++
		}
	}
	return count
}

// CountAt returns the number of checkers of a color at a space.
func (b *Board) CountAt(space int, color Color) int {
	if !ValidSpace(space) {
		return 0
	}
	return b.countAt(space, color)
}

// Count returns the number of checkers of a color across all spaces.
func (b *Board) Count(color Color) int {
	var count int
	for space := range b.spaces {
		count += b.countAt(space, color)
	}
	return count
}

// CanMoveTo returns whether a checker of the provided color may land on a point.
// A point holding a single opposing checker may be landed on, capturing it.
func (b *Board) CanMoveTo(space int, color Color) bool {
	if !PlayableSpace(space) {
		return false
	}
	checkers := b.spaces[space]
	return len(checkers) <= 1 || checkers[0].color == color
}

// Move moves a checker of the provided color from origin to destination,
// sending a lone opposing checker at the destination to the bar.
func (b *Board) Move(origin int, destination int, color Color) bool {
	if origin < SpaceBar || origin >= SpaceOff || b.countAt(origin, color) == 0 || !b.CanMoveTo(destination, color) {
		return false
	}
	c := b.take(origin, color)
	b.capture(destination, color)
	b.land(destination, c)
	return true
}

func (b *Board) capture(space int, color Color) {
	checkers := b.spaces[space]
	if len(checkers) != 1 || checkers[0].color == color {
		return
	}
	b.land(SpaceBar, b.take(space, checkers[0].color))
}

// ReenterFromBar moves a checker of the provided color from the bar to a point.
func (b *Board) ReenterFromBar(color Color, destination int) bool {
	if !b.HasCheckerOnBar(color) || !b.CanMoveTo(destination, color) {
		return false
	}
	c := b.TakeFromBar(color)
	b.capture(destination, color)
	b.land(destination, c)
	return true
}

func (b *Board) BarCount(color Color) int {
	return b.countAt(SpaceBar, color)
}

func (b *Board) HasCheckerOnBar(color Color) bool {
	return b.countAt(SpaceBar, color) > 0
}

// TakeFromBar removes a checker of the provided color from the bar. The
// caller is responsible for placing the returned checker.
func (b *Board) TakeFromBar(color Color) *Checker {
	return b.take(SpaceBar, color)
}

// CanBearOff returns whether every checker of a color which is still in play
// is in its home quadrant.
func (b *Board) CanBearOff(color Color) bool {
	if b.HasCheckerOnBar(color) {
		return false
	}
	for space := 1; space < SpaceOff; space++ {
		if !inHome(space, color) && b.countAt(space, color) != 0 {
			return false
		}
	}
	return true
}

// BearOff moves a checker of the provided color from a point to the borne off area.
func (b *Board) BearOff(space int, color Color) bool {
	if !PlayableSpace(space) || b.countAt(space, color) == 0 || !b.CanBearOff(color) {
		return false
	}
	b.land(SpaceOff, b.take(space, color))
	return true
}

func (b *Board) BorneOffCount(color Color) int {
	return b.countAt(SpaceOff, color)
}

// Validate reports the first violated board invariant, if any.
func (b *Board) Validate() error {
	for _, color := range []Color{White, Black} {
		if count := b.Count(color); count != CheckersPerColor {
			return fmt.Errorf("%w: %d %s checkers, expected %d", ErrInvalidBoard, count, color, CheckersPerColor)
		}
	}
	for space, checkers := range b.spaces {
		for _, c := range checkers {
			if c.position != space {
				return fmt.Errorf("%w: checker at %d reports position %d", ErrInvalidBoard, space, c.position)
			}
			if PlayableSpace(space) && c.color != checkers[0].color {
				return fmt.Errorf("%w: point %d holds both colors", ErrInvalidBoard, space)
			}
		}
	}
	return nil
}

func (b *Board) Copy() *Board {
	n := &Board{}
	for space, checkers := range b.spaces {
		for _, c := range checkers {
			n.land(space, newChecker(c.color))
		}
	}
	return n
}
