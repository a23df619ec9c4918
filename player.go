package bgrules

// Player counters are read through from the board, which is the only
// authoritative record of where checkers are.
type Player struct {
	Name string

	color Color
	board *Board
}

func NewPlayer(name string, color Color) *Player {
	return &Player{
		Name:  name,
		color: color,
	}
}

func (p *Player) Color() Color {
	return p.color
}

// Direction returns +1 when the player moves from point 24 toward point 1,
// or -1 when the player moves from point 1 toward point 24.
func (p *Player) Direction() int {
	return p.color.Direction()
}

func (p *Player) CheckersOnBar() int {
	if p.board == nil {
		return 0
	}
	return p.board.BarCount(p.color)
}

func (p *Player) CheckersBorneOff() int {
	if p.board == nil {
		return 0
	}
	return p.board.BorneOffCount(p.color)
}

func (p *Player) HasWon() bool {
	return p.CheckersBorneOff() == CheckersPerColor
}

func (p *Player) String() string {
	return p.Name + " (" + p.color.String() + ")"
}
