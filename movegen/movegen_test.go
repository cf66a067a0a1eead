package movegen

import (
	"sort"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/move"
)

func pos(r, c int) board.Position { return board.Position{Row: r, Col: c} }

func sortedStrings(ps []board.Position) []string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.String()
	}
	sort.Strings(s)
	return s
}

func TestInitialMoves(t *testing.T) {
	is := is.New(t)
	b := board.Initial()
	// The elephant is boxed in by its own chick.
	moves := Moves(&b, board.First, nil)
	got := make([]string, len(moves))
	for i, m := range moves {
		got[i] = m.String()
	}
	sort.Strings(got)
	is.Equal(got, []string{"b1-a2", "b1-c2", "b2-b3", "c1-c2"})

	moves = Moves(&b, board.Second, nil)
	is.Equal(len(moves), 4)
}

func TestSecondIsMirroredVertically(t *testing.T) {
	is := is.New(t)
	var b board.Board
	b.Set(pos(1, 0), board.Piece{Kind: board.Chick, Owner: board.Second})
	is.Equal(Destinations(&b, pos(1, 0), nil), []board.Position{pos(2, 0)})

	b.Set(pos(1, 0), board.Piece{Kind: board.Hen, Owner: board.Second})
	// Hen steps forward three ways, sideways, and straight back.
	is.Equal(sortedStrings(Destinations(&b, pos(1, 0), nil)),
		[]string{"a2", "a4", "b2", "b3"})
}

func TestDestinationsStayInBounds(t *testing.T) {
	is := is.New(t)
	var b board.Board
	b.Set(pos(0, 0), board.Piece{Kind: board.Lion, Owner: board.First})
	is.Equal(sortedStrings(Destinations(&b, pos(0, 0), nil)), []string{"a3", "b3", "b4"})
	is.Equal(len(Destinations(&b, pos(2, 2), nil)), 0)
}

func TestDrops(t *testing.T) {
	is := is.New(t)
	b := board.Initial()
	var h board.Hand
	h.Add(board.Chick)
	drops := Drops(&b, &h, board.First, nil)
	// 4 empty squares, none on row 0.
	is.Equal(len(drops), 4)
	for _, d := range drops {
		is.True(d.To.Row != 0)
		is.Equal(d.Kind, board.Chick)
	}

	var empty board.Board
	empty.Set(pos(3, 1), board.Piece{Kind: board.Lion, Owner: board.First})
	empty.Set(pos(0, 1), board.Piece{Kind: board.Lion, Owner: board.Second})
	var h2 board.Hand
	h2.Add(board.Chick)
	h2.Add(board.Chick)
	h2.Add(board.Giraffe)
	drops = Drops(&empty, &h2, board.Second, nil)
	// Chick: 10 empties minus the 2 on row 3. Giraffe: all 10. Duplicates
	// in hand do not duplicate drops.
	is.Equal(len(drops), 8+10)
	for _, d := range drops {
		if d.Kind == board.Chick {
			is.True(d.To.Row != 3)
		}
	}
}

func TestCheck(t *testing.T) {
	is := is.New(t)
	var b board.Board
	b.Set(pos(3, 1), board.Piece{Kind: board.Lion, Owner: board.First})
	b.Set(pos(0, 1), board.Piece{Kind: board.Lion, Owner: board.Second})
	is.True(!InCheck(&b, board.First))

	b.Set(pos(2, 0), board.Piece{Kind: board.Elephant, Owner: board.Second})
	is.True(InCheck(&b, board.First))

	// A Second chick only attacks downward.
	b.Clear(pos(2, 0))
	b.Set(pos(2, 1), board.Piece{Kind: board.Chick, Owner: board.Second})
	is.True(InCheck(&b, board.First))
	b.Clear(pos(2, 1))
	b.Set(pos(3, 0), board.Piece{Kind: board.Chick, Owner: board.Second})
	is.True(!InCheck(&b, board.First))

	b.Clear(pos(0, 1))
	is.True(InCheck(&b, board.Second))
}

func TestPseudoActionsIncludeLionCapture(t *testing.T) {
	is := is.New(t)
	var b board.Board
	b.Set(pos(1, 1), board.Piece{Kind: board.Lion, Owner: board.First})
	b.Set(pos(0, 1), board.Piece{Kind: board.Lion, Owner: board.Second})
	var h board.Hand
	acts := PseudoActions(&b, &h, board.First)
	is.True(contains(acts, move.NewMove(pos(1, 1), pos(0, 1))))
}

func contains(as []move.Action, a move.Action) bool {
	for _, x := range as {
		if x == a {
			return true
		}
	}
	return false
}
