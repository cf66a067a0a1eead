package alphabeta

import (
	"context"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/evaluator"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func pos(r, c int) board.Position { return board.Position{Row: r, Col: c} }

func put(b *board.Board, r, c int, k board.PieceKind, owner board.Player) {
	b.Set(pos(r, c), board.Piece{Kind: k, Owner: owner})
}

// lastSource always picks the last tied action.
type lastSource struct{ n int }

func (l *lastSource) Intn(n int) int {
	l.n = n
	return n - 1
}

// onlyOneAction is Second to move with a cornered Lion; the Chick push
// is the single legal action.
func onlyOneAction() *game.State {
	var b board.Board
	put(&b, 0, 0, board.Lion, board.Second)
	put(&b, 0, 2, board.Chick, board.Second)
	put(&b, 1, 1, board.Giraffe, board.First)
	put(&b, 2, 2, board.Elephant, board.First)
	put(&b, 3, 0, board.Lion, board.First)
	var hands [2]board.Hand
	return game.FromPosition(b, hands, board.Second, game.DefaultRules())
}

// lionHangs lets First take Second's Lion with the Giraffe.
func lionHangs() *game.State {
	var b board.Board
	put(&b, 0, 1, board.Lion, board.Second)
	put(&b, 1, 1, board.Giraffe, board.First)
	put(&b, 3, 1, board.Lion, board.First)
	var hands [2]board.Hand
	return game.FromPosition(b, hands, board.First, game.DefaultRules())
}

func TestSingleLegalActionIsReturned(t *testing.T) {
	is := is.New(t)
	s := onlyOneAction()
	legal := game.LegalActions(s)
	is.Equal(len(legal), 1)
	is.Equal(legal[0], move.NewMove(pos(0, 2), pos(1, 2)))

	for _, w := range []evaluator.Weights{{}, evaluator.MaterialOnly(), evaluator.DefaultWeights()} {
		res, err := NewSolver(1, w).Solve(context.Background(), s)
		is.NoErr(err)
		is.Equal(res.Action, legal[0])
	}
}

func TestFindsLionCapture(t *testing.T) {
	is := is.New(t)
	s := lionHangs()
	capture := move.NewMove(pos(1, 1), pos(0, 1))
	for _, depth := range []int{1, 2, 3, 4} {
		solver := NewSolver(depth, evaluator.DefaultWeights())
		res, err := solver.Solve(context.Background(), s)
		is.NoErr(err)
		is.Equal(res.Action, capture)
		is.Equal(res.Score, Infinity+depth-1)
		is.Equal(len(res.Tied), 1)
		is.True(res.Complete)
	}
}

func TestTieBreakPicksAmongTied(t *testing.T) {
	is := is.New(t)
	s := game.InitialState()
	// With every weight zero, every opening scores 0.
	solver := NewSolver(1, evaluator.Weights{})
	src := &lastSource{}
	solver.SetRandomSource(src)
	res, err := solver.Solve(context.Background(), s)
	is.NoErr(err)
	is.Equal(res.Score, 0)
	is.Equal(len(res.Tied), len(game.LegalActions(s)))
	is.Equal(src.n, len(res.Tied))
	is.Equal(res.Action, res.Tied[len(res.Tied)-1])
}

func TestParallelMatchesSerial(t *testing.T) {
	is := is.New(t)
	s := game.InitialState()
	serial := NewSolver(3, evaluator.DefaultWeights())
	a, err := serial.Solve(context.Background(), s)
	is.NoErr(err)

	parallel := NewSolver(3, evaluator.DefaultWeights())
	parallel.SetThreads(4)
	b, err := parallel.Solve(context.Background(), s)
	is.NoErr(err)

	is.Equal(a.Score, b.Score)
	is.Equal(len(a.Tied), len(b.Tied))
	for _, act := range a.Tied {
		found := false
		for _, other := range b.Tied {
			if other == act {
				found = true
			}
		}
		is.True(found)
	}
}

func TestNodeLimitStopsEarly(t *testing.T) {
	is := is.New(t)
	s := game.InitialState()
	solver := NewSolver(6, evaluator.DefaultWeights())
	solver.SetNodeLimit(1)
	res, err := solver.Solve(context.Background(), s)
	is.NoErr(err)
	is.True(!res.Complete)
	is.True(game.IsLegal(s, res.Action))
}

func TestCancelledContextStillAnswers(t *testing.T) {
	is := is.New(t)
	s := game.InitialState()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewSolver(5, evaluator.DefaultWeights()).Solve(ctx, s)
	is.NoErr(err)
	is.True(!res.Complete)
	is.True(game.IsLegal(s, res.Action))
}

func TestTerminalStateIsAnError(t *testing.T) {
	is := is.New(t)
	s := game.Apply(lionHangs(), move.NewMove(pos(1, 1), pos(0, 1)))
	is.True(s.Outcome.Over())
	_, err := NewSolver(3, evaluator.DefaultWeights()).Solve(context.Background(), s)
	is.Equal(err, ErrNoLegalActionsForSearch)
}

func TestSolveDoesNotMutate(t *testing.T) {
	is := is.New(t)
	s := game.InitialState()
	before, err := s.Fingerprint()
	is.NoErr(err)
	_, err = NewSolver(3, evaluator.DefaultWeights()).Solve(context.Background(), s)
	is.NoErr(err)
	after, err := s.Fingerprint()
	is.NoErr(err)
	is.Equal(before, after)
}
