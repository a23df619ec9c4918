package bgrules

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, rolls ...int) *Game {
	t.Helper()

	g, err := NewGameWithRoller("Alice", "Bob", scriptedRoller(rolls...))
	require.NoError(t, err)
	return g
}

func setBoard(g *Game, b *Board) {
	g.board = b
	for _, p := range g.players {
		p.board = b
	}
}

func TestNewGame(t *testing.T) {
	g := NewGame("Alice", "Bob")
	require.Equal(t, "Alice", g.CurrentPlayer().Name)
	require.Equal(t, White, g.CurrentColor())
	require.Equal(t, Black, g.Player2().Color())
	require.Equal(t, AwaitingRoll, g.State())
	require.Empty(t, g.Available())
	require.Nil(t, g.LastRoll())
	require.False(t, g.Over())
	require.Nil(t, g.Winner())
	require.NoError(t, g.Board().Validate())

	// No move may be made before rolling.
	require.False(t, g.CanMakeAnyMove())
	require.False(t, g.CanMakeMove(13, 3))
	require.False(t, g.TryMove(13, 3))
	require.False(t, g.ForcePassIfNoMoves())
	require.Equal(t, "Alice", g.CurrentPlayer().Name)

	_, ok := g.Roll()
	require.True(t, ok)
	require.True(t, g.CanMakeAnyMove())
}

func TestNewGameWithNilRoller(t *testing.T) {
	g, err := NewGameWithRoller("Alice", "Bob", nil)
	require.ErrorIs(t, err, ErrNilRoller)
	require.Nil(t, g)
}

func TestRoll(t *testing.T) {
	g := newTestGame(t, 3, 5)
	roll, ok := g.Roll()
	require.True(t, ok)
	require.Equal(t, []int{3, 5}, roll)
	require.Equal(t, []int{3, 5}, g.Available())
	require.False(t, g.IsDouble())
	require.Equal(t, MovesAvailable, g.State())

	// Rolling again is not allowed until the turn ends.
	roll, ok = g.Roll()
	require.False(t, ok)
	require.Nil(t, roll)
	require.Equal(t, []int{3, 5}, g.Available())
}

func TestRollDoubles(t *testing.T) {
	g := newTestGame(t, 4, 4)
	roll, ok := g.Roll()
	require.True(t, ok)
	require.Equal(t, []int{4, 4, 4, 4}, roll)
	require.Equal(t, []int{4, 4, 4, 4}, g.Available())
	require.True(t, g.IsDouble())
}

func TestDoublesConsumedOneAtATime(t *testing.T) {
	g := newTestGame(t, 6, 6)
	setBoard(g, testBoard(t,
		placement{24, White, 4},
		placement{1, Black, 2},
	))
	_, ok := g.Roll()
	require.True(t, ok)

	for i := 0; i < 4; i++ {
		require.Equal(t, "Alice", g.CurrentPlayer().Name)
		require.Len(t, g.Available(), 4-i)
		require.True(t, g.TryMove(24, 6), "move %d", i+1)
	}
	require.Empty(t, g.Available())
	require.Equal(t, "Bob", g.CurrentPlayer().Name)
	require.Equal(t, 4, g.board.CountAt(18, White))
	require.Len(t, g.Moves(), 4)
}

func TestOpeningDoubles(t *testing.T) {
	g := newTestGame(t, 6, 6)
	_, ok := g.Roll()
	require.True(t, ok)

	require.True(t, g.TryMove(24, 6))
	require.True(t, g.TryMove(24, 6))
	require.False(t, g.TryMove(24, 6))
	require.True(t, g.TryMove(13, 6))
	require.True(t, g.TryMove(13, 6))

	require.Equal(t, Black, g.CurrentColor())
	require.Equal(t, AwaitingRoll, g.State())
	require.Equal(t, 2, g.board.CountAt(18, White))
	require.Equal(t, 2, g.board.CountAt(7, White))
	require.NoError(t, g.board.Validate())
}

func TestTurnConsumption(t *testing.T) {
	g := newTestGame(t, 3, 1)
	_, ok := g.Roll()
	require.True(t, ok)

	require.True(t, g.TryMove(8, 3))
	require.Equal(t, White, g.CurrentColor())
	require.Equal(t, []int{1}, g.Available())

	require.True(t, g.TryMove(6, 1))
	require.Equal(t, Black, g.CurrentColor())
	require.Empty(t, g.Available())
	require.Equal(t, 2, g.board.CountAt(5, White))
	require.Equal(t, []Move{{From: 8, Die: 3, To: 5}, {From: 6, Die: 1, To: 5}}, g.Moves())

	// Black moves from point 1 toward point 24.
	_, ok = g.Roll()
	require.True(t, ok)
	require.True(t, g.TryMove(1, 3))
	require.Equal(t, 1, g.board.CountAt(4, Black))
	require.True(t, g.TryMove(17, 1))
	require.Equal(t, White, g.CurrentColor())
}

func TestTryMoveRejected(t *testing.T) {
	g := newTestGame(t, 5, 2)
	_, ok := g.Roll()
	require.True(t, ok)
	before := g.Snapshot()

	require.False(t, g.TryMove(13, 3)) // Die not rolled.
	require.False(t, g.TryMove(10, 5)) // Empty origin.
	require.False(t, g.TryMove(1, 5))  // Opponent's checker.
	require.False(t, g.TryMove(24, 5)) // Blocked.
	require.False(t, g.TryMove(6, 5))  // Blocked.
	require.False(t, g.TryMove(SpaceBar, 5))
	require.False(t, g.TryMove(-5, 2))
	require.False(t, g.TryMove(30, 2))
	require.False(t, g.TryMove(6, 0))
	require.Equal(t, before, g.Snapshot())
}

func TestCapture(t *testing.T) {
	g := newTestGame(t, 5, 2)
	setBoard(g, testBoard(t,
		placement{8, White, 3},
		placement{13, White, 2},
		placement{3, Black, 1},
		placement{12, Black, 2},
	))
	_, ok := g.Roll()
	require.True(t, ok)

	require.True(t, g.TryMove(8, 5))
	require.Equal(t, 1, g.board.CountAt(3, White))
	require.Zero(t, g.board.CountAt(3, Black))
	require.Equal(t, 1, g.Player2().CheckersOnBar())
	require.Equal(t, []Move{{From: 8, Die: 5, To: 3, Hit: true}}, g.Moves())
	require.NoError(t, g.board.Validate())
}

func TestBarPriority(t *testing.T) {
	t.Run("only home checkers", func(t *testing.T) {
		g := newTestGame(t, 3, 4)
		setBoard(g, testBoard(t,
			placement{SpaceBar, White, 1},
			placement{6, White, 4},
			placement{1, Black, 2},
		))
		_, ok := g.Roll()
		require.True(t, ok)

		before := g.Snapshot()
		require.False(t, g.TryMove(24, 3))
		require.Equal(t, before, g.Snapshot())
	})

	t.Run("checkers outside home", func(t *testing.T) {
		g := newTestGame(t, 3, 4)
		setBoard(g, testBoard(t,
			placement{SpaceBar, White, 1},
			placement{24, White, 2},
			placement{13, White, 3},
			placement{22, Black, 2},
		))
		_, ok := g.Roll()
		require.True(t, ok)

		before := g.Snapshot()
		for origin := 1; origin < SpaceOff; origin++ {
			for die := 1; die <= 6; die++ {
				require.False(t, g.CanMakeMove(origin, die), "origin %d die %d", origin, die)
			}
		}
		require.False(t, g.TryMove(24, 3))
		require.Equal(t, before, g.Snapshot())

		require.False(t, g.CanMakeMove(SpaceBar, 3)) // Point 22 is blocked.
		require.True(t, g.CanMakeMove(SpaceBar, 4))
		require.True(t, g.TryMove(SpaceBar, 4))
		require.Equal(t, 1, g.board.CountAt(21, White))

		// Once the bar is clear other checkers may move.
		require.False(t, g.CanMakeMove(SpaceBar, 3))
		require.True(t, g.CanMakeMove(24, 3))
	})

	t.Run("black enters on the low points", func(t *testing.T) {
		g := newTestGame(t, 3, 4)
		setBoard(g, testBoard(t,
			placement{SpaceBar, Black, 1},
			placement{4, White, 1},
			placement{3, White, 2},
		))
		g.turn = 1
		_, ok := g.Roll()
		require.True(t, ok)

		require.False(t, g.CanMakeMove(SpaceBar, 3))
		require.True(t, g.TryMove(SpaceBar, 4))
		require.Equal(t, 1, g.board.CountAt(4, Black))
		require.Equal(t, 1, g.Player1().CheckersOnBar())
		require.Equal(t, []Move{{From: SpaceBar, Die: 4, To: 4, Hit: true}}, g.Moves())
	})
}

func TestBearOffWhite(t *testing.T) {
	g := newTestGame(t, 6, 2)
	setBoard(g, testBoard(t,
		placement{5, White, 1},
		placement{3, White, 1},
		placement{20, Black, 2},
	))
	_, ok := g.Roll()
	require.True(t, ok)

	require.False(t, g.CanMakeMove(3, 6)) // A checker remains on point 5.
	require.True(t, g.CanMakeMove(5, 6))
	require.True(t, g.CanMakeMove(3, 2))
	require.True(t, g.TryMove(5, 6))
	require.Equal(t, 14, g.Player1().CheckersBorneOff())
	require.Equal(t, []Move{{From: 5, Die: 6, To: SpaceOff}}, g.Moves())

	require.True(t, g.TryMove(3, 2))
	require.Equal(t, Black, g.CurrentColor())
}

func TestBearOffExact(t *testing.T) {
	g := newTestGame(t, 4, 1)
	setBoard(g, testBoard(t,
		placement{6, White, 1},
		placement{4, White, 1},
		placement{20, Black, 2},
	))
	_, ok := g.Roll()
	require.True(t, ok)

	// The exact die is legal even though a checker remains on point 6.
	require.True(t, g.CanMakeMove(4, 4))
	require.True(t, g.TryMove(4, 4))
	require.Equal(t, 14, g.Player1().CheckersBorneOff())
}

func TestBearOffBlack(t *testing.T) {
	g := newTestGame(t, 6, 3)
	setBoard(g, testBoard(t,
		placement{20, Black, 1},
		placement{22, Black, 1},
		placement{5, White, 2},
	))
	g.turn = 1
	_, ok := g.Roll()
	require.True(t, ok)

	require.False(t, g.CanMakeMove(22, 6)) // A checker remains on point 20.
	require.True(t, g.CanMakeMove(22, 3))
	require.True(t, g.CanMakeMove(20, 6))
	require.True(t, g.CanMakeMove(20, 3))
	require.True(t, g.TryMove(20, 6))
	require.True(t, g.TryMove(22, 3))

	require.True(t, g.Over())
	require.Equal(t, "Bob", g.Winner().Name)
}

func TestBearOffNotAllowed(t *testing.T) {
	t.Run("checker outside home", func(t *testing.T) {
		g := newTestGame(t, 2, 6)
		setBoard(g, testBoard(t,
			placement{7, White, 1},
			placement{2, White, 1},
			placement{20, Black, 2},
		))
		_, ok := g.Roll()
		require.True(t, ok)

		require.False(t, g.CanMakeMove(2, 2))
		require.True(t, g.TryMove(7, 6))
		require.True(t, g.TryMove(2, 2))
	})

	t.Run("checker on bar", func(t *testing.T) {
		g := newTestGame(t, 2, 6)
		setBoard(g, testBoard(t,
			placement{SpaceBar, White, 1},
			placement{2, White, 1},
			placement{20, Black, 2},
		))
		_, ok := g.Roll()
		require.True(t, ok)

		require.False(t, g.CanMakeMove(2, 2))
		require.True(t, g.TryMove(SpaceBar, 6))
		require.True(t, g.CanMakeMove(19, 2))
		require.False(t, g.CanMakeMove(2, 2))
	})
}

func TestVictory(t *testing.T) {
	g := newTestGame(t, 2, 3)
	setBoard(g, testBoard(t,
		placement{2, White, 1},
		placement{20, Black, 2},
	))
	_, ok := g.Roll()
	require.True(t, ok)

	require.True(t, g.TryMove(2, 2))
	require.True(t, g.Over())
	require.Equal(t, GameOver, g.State())
	require.Equal(t, "Alice", g.Winner().Name)
	require.True(t, g.Player1().HasWon())
	require.Empty(t, g.Available())

	_, ok = g.Roll()
	require.False(t, ok)
	require.False(t, g.CanMakeAnyMove())
	require.False(t, g.TryMove(20, 3))
	require.False(t, g.ForcePassIfNoMoves())

	g.EndTurn()
	require.Equal(t, "Alice", g.CurrentPlayer().Name)

	s := g.Snapshot()
	require.True(t, s.Over)
	require.Equal(t, "Alice", s.Winner)
	require.Equal(t, 15, s.Player1.BorneOff)
}

func TestForcePassIfNoMoves(t *testing.T) {
	g := newTestGame(t, 3, 4)
	setBoard(g, testBoard(t,
		placement{SpaceBar, White, 1},
		placement{6, White, 5},
		placement{19, Black, 2},
		placement{20, Black, 2},
		placement{21, Black, 2},
		placement{22, Black, 2},
		placement{23, Black, 2},
		placement{24, Black, 2},
	))
	require.False(t, g.ForcePassIfNoMoves())

	_, ok := g.Roll()
	require.True(t, ok)
	require.False(t, g.CanMakeAnyMove())
	require.Empty(t, g.LegalMoves())

	require.True(t, g.ForcePassIfNoMoves())
	require.True(t, g.Passed())
	require.Equal(t, Black, g.CurrentColor())
	require.Equal(t, AwaitingRoll, g.State())
	require.True(t, g.Snapshot().Passed)

	_, ok = g.Roll()
	require.True(t, ok)
	require.False(t, g.Passed())
	require.False(t, g.ForcePassIfNoMoves())
}

func TestEndTurn(t *testing.T) {
	g := newTestGame(t, 3, 1)
	_, ok := g.Roll()
	require.True(t, ok)
	require.True(t, g.TryMove(8, 3))

	g.EndTurn()
	require.Equal(t, Black, g.CurrentColor())
	require.Empty(t, g.Available())
	require.False(t, g.Over())
}

func TestLegalMoves(t *testing.T) {
	g := newTestGame(t, 6, 5)
	_, ok := g.Roll()
	require.True(t, ok)

	require.ElementsMatch(t, []Move{
		{From: 24, Die: 6, To: 18},
		{From: 13, Die: 6, To: 7},
		{From: 8, Die: 6, To: 2},
		{From: 13, Die: 5, To: 8},
		{From: 8, Die: 5, To: 3},
	}, g.LegalMoves())
}

func TestSnapshot(t *testing.T) {
	g := newTestGame(t, 5, 2)
	_, ok := g.Roll()
	require.True(t, ok)
	require.True(t, g.TryMove(13, 5))

	s := g.Snapshot()
	require.Equal(t, 1, s.Turn)
	require.Equal(t, "Alice", s.CurrentPlayer)
	require.Equal(t, White, s.CurrentColor)
	require.Equal(t, MovesAvailable, s.State)
	require.Equal(t, []int{5, 2}, s.Roll)
	require.Equal(t, []int{2}, s.Available)
	require.Equal(t, Point{White: 4}, s.Points[13])
	require.Equal(t, Point{White: 4}, s.Points[8])
	require.Equal(t, Point{Black: 5}, s.Points[19])
	require.Equal(t, PlayerState{Name: "Bob", Color: Black, Direction: -1}, s.Player2)
	require.Equal(t, "Bob", s.OpponentPlayerState().Name)
	require.Equal(t, "Alice", s.CurrentPlayerState().Name)
	require.NotEmpty(t, s.Legal)
	require.False(t, s.Over)
	require.Empty(t, s.Winner)

	// The snapshot does not change with the game.
	require.True(t, g.TryMove(13, 2))
	require.Equal(t, []int{2}, s.Available)
}

func TestRandomPlay(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		r := rand.New(rand.NewSource(seed))
		g, err := NewGameWithRoller("Alice", "Bob", func() int {
			return r.Intn(6) + 1
		})
		require.NoError(t, err)

		for i := 0; i < 50000 && !g.Over(); i++ {
			switch g.State() {
			case AwaitingRoll:
				roll, ok := g.Roll()
				require.True(t, ok)
				require.Equal(t, len(roll), len(g.Available()))
			case MovesAvailable:
				if g.ForcePassIfNoMoves() {
					continue
				}
				legal := g.LegalMoves()
				require.NotEmpty(t, legal)
				require.True(t, g.CanMakeAnyMove())
				if g.board.HasCheckerOnBar(g.CurrentColor()) {
					for _, m := range legal {
						require.Equal(t, SpaceBar, m.From)
					}
				}

				m := legal[r.Intn(len(legal))]
				turn, available := g.turn, len(g.available)
				require.True(t, g.TryMove(m.From, m.Die))
				if g.turn == turn && !g.over {
					require.Len(t, g.available, available-1)
				} else if !g.over {
					require.Equal(t, 1, available)
				}
			}
			require.NoError(t, g.board.Validate())
		}

		require.True(t, g.Over(), "seed %d", seed)
		require.Equal(t, CheckersPerColor, g.Winner().CheckersBorneOff())
	}
}

func TestGameValidate(t *testing.T) {
	g := newTestGame(t, 3, 1)
	require.NoError(t, g.Validate())

	// Copies rebuild checker positions, so only the live board shows corruption.
	g.board.spaces[6][0].position = 7
	require.ErrorIs(t, g.Validate(), ErrInvalidBoard)
	require.NoError(t, g.Board().Validate())
}
