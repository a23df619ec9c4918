package bgrules

type PlayerState struct {
	Name      string
	Color     Color
	Direction int
	Bar       int
	BorneOff  int
}

// Point holds the number of checkers of each color at a space.
type Point struct {
	White int
	Black int
}

// GameState is a read-only view of a game.
type GameState struct {
	Turn          int // 1 or 2
	CurrentPlayer string
	CurrentColor  Color
	State         TurnState
	Roll          []int
	Available     []int
	Moves         []Move
	Legal         []Move
	Player1       PlayerState
	Player2       PlayerState
	Points        [NumSpaces]Point
	Over          bool
	Winner        string
	Passed        bool
}

func newPlayerState(p *Player) PlayerState {
	return PlayerState{
		Name:      p.Name,
		Color:     p.color,
		Direction: p.Direction(),
		Bar:       p.CheckersOnBar(),
		BorneOff:  p.CheckersBorneOff(),
	}
}

func (g *Game) Snapshot() *GameState {
	s := &GameState{
		Turn:          g.turn + 1,
		CurrentPlayer: g.CurrentPlayer().Name,
		CurrentColor:  g.CurrentColor(),
		State:         g.State(),
		Roll:          g.dice.LastRoll(),
		Available:     g.Available(),
		Moves:         g.Moves(),
		Legal:         g.LegalMoves(),
		Player1:       newPlayerState(g.players[0]),
		Player2:       newPlayerState(g.players[1]),
		Over:          g.over,
		Passed:        g.passed,
	}
	if g.winner != nil {
		s.Winner = g.winner.Name
	}
	for space := range s.Points {
		s.Points[space] = Point{
			White: g.board.countAt(space, White),
			Black: g.board.countAt(space, Black),
		}
	}
	return s
}

// CurrentPlayerState returns the state of the player whose turn it is.
func (s *GameState) CurrentPlayerState() PlayerState {
	if s.Turn == 2 {
		return s.Player2
	}
	return s.Player1
}

func (s *GameState) OpponentPlayerState() PlayerState {
	if s.Turn == 2 {
		return s.Player1
	}
	return s.Player2
}
