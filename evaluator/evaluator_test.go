package evaluator

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

func TestInitialPositionIsBalanced(t *testing.T) {
	is := is.New(t)
	s := game.InitialState()
	for _, w := range []Weights{MaterialOnly(), DefaultWeights()} {
		is.Equal(Evaluate(s, board.First, w), 0)
		is.Equal(Evaluate(s, board.Second, w), 0)
	}
}

func TestEvaluateIsIdempotentAndAntisymmetric(t *testing.T) {
	is := is.New(t)
	s := game.InitialState()
	s = game.Apply(s, move.NewMove(board.Position{Row: 2, Col: 1}, board.Position{Row: 1, Col: 1}))
	w := DefaultWeights()
	a := Evaluate(s, board.First, w)
	b := Evaluate(s, board.First, w)
	is.Equal(a, b)
	is.Equal(Evaluate(s, board.Second, w), -a)
	// Up a chick, with Second in check.
	is.True(a > 0)
}

func TestHandCountsAsMaterial(t *testing.T) {
	is := is.New(t)
	var b board.Board
	b.Set(board.Position{Row: 3, Col: 1}, board.Piece{Kind: board.Lion, Owner: board.First})
	b.Set(board.Position{Row: 0, Col: 1}, board.Piece{Kind: board.Lion, Owner: board.Second})
	var hands [2]board.Hand
	hands[board.First].Add(board.Giraffe)
	hands[board.Second].Add(board.Hen)
	s := game.FromPosition(b, hands, board.First, game.DefaultRules())
	w := MaterialOnly()
	is.Equal(Evaluate(s, board.First, w), w.Giraffe-w.Chick)
}

func TestPositionalMirrorsForSecond(t *testing.T) {
	is := is.New(t)
	first := board.Piece{Kind: board.Chick, Owner: board.First}
	second := board.Piece{Kind: board.Chick, Owner: board.Second}
	is.Equal(squareBonus(first, 1, 0), squareBonus(second, 2, 0))
	is.True(squareBonus(first, 1, 1) > squareBonus(first, 2, 1))
}

func TestMobilityDisabledIgnoresActions(t *testing.T) {
	is := is.New(t)
	s := game.InitialState()
	s = game.Apply(s, move.NewMove(board.Position{Row: 3, Col: 1}, board.Position{Row: 2, Col: 0}))
	w := MaterialOnly()
	is.Equal(Evaluate(s, board.First, w), 0)
	w.Mobility = 1
	diff := len(game.LegalActionsFor(s, board.First)) - len(game.LegalActionsFor(s, board.Second))
	is.Equal(Evaluate(s, board.First, w), diff)
}
