package bgrules

import (
	"errors"
)

var ErrNilRoller = errors.New("roller must not be nil")

type TurnState int8

const (
	AwaitingRoll TurnState = iota
	MovesAvailable
	GameOver
)

func (s TurnState) String() string {
	switch s {
	case AwaitingRoll:
		return "roll"
	case MovesAvailable:
		return "move"
	case GameOver:
		return "over"
	default:
		return "unknown"
	}
}

func (s TurnState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Move is a single checker movement. From is SpaceBar when entering from the
// bar and To is SpaceOff when bearing off.
type Move struct {
	From int
	Die  int
	To   int
	Hit  bool
}

// Game is a single match between two players. Player 1 plays white and moves first.
type Game struct {
	board     *Board
	players   [2]*Player
	turn      int
	dice      *Dice
	available []int
	moves     []Move
	over      bool
	winner    *Player
	passed    bool
}

func NewGame(name1 string, name2 string) *Game {
	g, err := NewGameWithRoller(name1, name2, RollDie)
	if err != nil {
		panic(err)
	}
	return g
}

// NewGameWithRoller returns a new game which rolls dice using the provided roller.
func NewGameWithRoller(name1 string, name2 string, roller Roller) (*Game, error) {
	if roller == nil {
		return nil, ErrNilRoller
	}
	b := NewBoard()
	g := &Game{
		board: b,
		players: [2]*Player{
			NewPlayer(name1, White),
			NewPlayer(name2, Black),
		},
		dice: NewDice(roller),
	}
	for _, p := range g.players {
		p.board = b
	}
	return g, nil
}

func (g *Game) Player1() *Player {
	return g.players[0]
}

func (g *Game) Player2() *Player {
	return g.players[1]
}

func (g *Game) CurrentPlayer() *Player {
	return g.players[g.turn]
}

func (g *Game) OpponentPlayer() *Player {
	return g.players[1-g.turn]
}

func (g *Game) CurrentColor() Color {
	return g.players[g.turn].color
}

// Board returns a copy of the board. Changes to the copy do not affect the game.
func (g *Game) Board() *Board {
	return g.board.Copy()
}

// Available returns the die values which have not been used this turn.
// Validate checks the invariants of the game's board.
func (g *Game) Validate() error {
	return g.board.Validate()
}

func (g *Game) Available() []int {
	available := make([]int, len(g.available))
	copy(available, g.available)
	return available
}

// Moves returns the moves played during the current or most recent turn.
func (g *Game) Moves() []Move {
	moves := make([]Move, len(g.moves))
	copy(moves, g.moves)
	return moves
}

func (g *Game) LastRoll() []int {
	return g.dice.LastRoll()
}

func (g *Game) IsDouble() bool {
	return g.dice.IsDouble()
}

func (g *Game) Over() bool {
	return g.over
}

// Winner returns the winning player, or nil while the game is in progress.
func (g *Game) Winner() *Player {
	return g.winner
}

// Passed returns whether the last turn ended because no move was possible.
func (g *Game) Passed() bool {
	return g.passed
}

func (g *Game) State() TurnState {
	switch {
	case g.over:
		return GameOver
	case len(g.available) == 0:
		return AwaitingRoll
	default:
		return MovesAvailable
	}
}

// Roll rolls the dice for the current player. Rolling is only allowed when
// no die values remain from the current turn.
func (g *Game) Roll() ([]int, bool) {
	if g.State() != AwaitingRoll {
		return nil, false
	}
	roll := g.dice.Roll()
	g.available = make([]int, len(roll))
	copy(g.available, roll)
	g.moves = nil
	g.passed = false
	return roll, true
}

func (g *Game) haveDie(die int) bool {
	for _, v := range g.available {
		if v == die {
			return true
		}
	}
	return false
}

func (g *Game) useDie(die int) {
	for i, v := range g.available {
		if v == die {
			g.available = append(g.available[:i], g.available[i+1:]...)
			return
		}
	}
}

// destination returns the space a checker of the provided color reaches from
// origin. Destinations past the edge of the board are returned as is.
func destination(origin int, die int, color Color) int {
	if origin == SpaceBar && color == White {
		origin = SpaceOff
	}
	return origin - die*color.Direction()
}

// CanMakeMove returns whether the current player may move a checker from
// origin using the provided die value. Origin SpaceBar enters a checker from the bar.
func (g *Game) CanMakeMove(origin int, die int) bool {
	if g.over || !g.haveDie(die) {
		return false
	}
	color := g.CurrentColor()
	if g.board.HasCheckerOnBar(color) {
		if origin != SpaceBar {
			return false
		}
		return g.board.CanMoveTo(destination(origin, die, color), color)
	}
	if !PlayableSpace(origin) || g.board.countAt(origin, color) == 0 {
		return false
	}
	to := destination(origin, die, color)
	if PlayableSpace(to) {
		return g.board.CanMoveTo(to, color)
	}
	return g.canBearOffFrom(origin, to, color)
}

// canBearOffFrom returns whether a checker may be borne off from origin. A die
// larger than needed may only be used for the checker farthest from the edge.
func (g *Game) canBearOffFrom(origin int, to int, color Color) bool {
	if !g.board.CanBearOff(color) {
		return false
	}
	edge := SpaceBar
	if color == Black {
		edge = SpaceOff
	}
	if to == edge {
		return true
	}
	dir := color.Direction()
	for space := origin + dir; PlayableSpace(space); space += dir {
		if g.board.countAt(space, color) != 0 {
			return false
		}
	}
	return true
}

// CanMakeAnyMove returns whether any remaining die value may be used.
func (g *Game) CanMakeAnyMove() bool {
	for i, die := range g.available {
		if i > 0 && g.haveDieBefore(i, die) {
			continue
		}
		for origin := SpaceBar; origin < SpaceOff; origin++ {
			if g.CanMakeMove(origin, die) {
				return true
			}
		}
	}
	return false
}

func (g *Game) haveDieBefore(index int, die int) bool {
	for _, v := range g.available[:index] {
		if v == die {
			return true
		}
	}
	return false
}

// LegalMoves returns every single move the current player may make.
func (g *Game) LegalMoves() []Move {
	var moves []Move
	color := g.CurrentColor()
	for i, die := range g.available {
		if i > 0 && g.haveDieBefore(i, die) {
			continue
		}
		for origin := SpaceBar; origin < SpaceOff; origin++ {
			if !g.CanMakeMove(origin, die) {
				continue
			}
			to := destination(origin, die, color)
			if !PlayableSpace(to) {
				to = SpaceOff
			}
			moves = append(moves, Move{
				From: origin,
				Die:  die,
				To:   to,
				Hit:  to != SpaceOff && g.board.countAt(to, color.Opponent()) == 1,
			})
		}
	}
	return moves
}

// TryMove moves a checker from origin using the provided die value. When the
// move is not legal, false is returned and the game is not modified. The turn
// ends automatically once every die value has been used or the last checker
// has been borne off.
func (g *Game) TryMove(origin int, die int) bool {
	if !g.CanMakeMove(origin, die) {
		return false
	}
	color := g.CurrentColor()
	to := destination(origin, die, color)
	hit := PlayableSpace(to) && g.board.countAt(to, color.Opponent()) == 1

	var ok bool
	switch {
	case origin == SpaceBar:
		ok = g.board.ReenterFromBar(color, to)
	case !PlayableSpace(to):
		ok = g.board.BearOff(origin, color)
		to = SpaceOff
	default:
		ok = g.board.Move(origin, to, color)
	}
	if !ok {
		return false
	}

	g.useDie(die)
	g.moves = append(g.moves, Move{
		From: origin,
		Die:  die,
		To:   to,
		Hit:  hit,
	})
	if len(g.available) == 0 || g.CurrentPlayer().HasWon() {
		g.EndTurn()
	}
	return true
}

// EndTurn ends the game when either player has borne off every checker,
// otherwise the turn passes to the opponent.
func (g *Game) EndTurn() {
	g.available = nil
	if g.over {
		return
	}
	for _, p := range g.players {
		if p.HasWon() {
			g.over = true
			g.winner = p
			return
		}
	}
	g.turn = 1 - g.turn
}

// ForcePassIfNoMoves ends the turn when dice have been rolled but none of
// them may be used. It returns whether the turn was passed.
func (g *Game) ForcePassIfNoMoves() bool {
	if g.State() != MovesAvailable || g.CanMakeAnyMove() {
		return false
	}
	g.EndTurn()
	g.passed = true
	return true
}
