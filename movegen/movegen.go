// Package movegen enumerates pseudo-legal actions: piece steps and drops
// that respect geometry and occupancy but not Lion safety. Filtering for
// check lives in the game package.
package movegen

import (
	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/move"
)

type offset struct {
	dr, dc int
}

// Offsets are written from First's side; forward is a row decrease.
// Second negates the row delta only.
var offsets = [board.NumKinds][]offset{
	board.Lion: {
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	},
	board.Giraffe:  {{-1, 0}, {1, 0}, {0, -1}, {0, 1}},
	board.Elephant: {{-1, -1}, {-1, 1}, {1, -1}, {1, 1}},
	board.Chick:    {{-1, 0}},
	board.Hen: {
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, 0},
	},
}

func step(p board.Piece, from board.Position, o offset) board.Position {
	dr := o.dr
	if p.Owner == board.Second {
		dr = -dr
	}
	return from.Add(dr, o.dc)
}

// Destinations appends to dst every square the piece on from may step to.
// The empty square yields nothing.
func Destinations(b *board.Board, from board.Position, dst []board.Position) []board.Position {
	p, ok := b.Get(from)
	if !ok {
		return dst
	}
	for _, o := range offsets[p.Kind] {
		to := step(p, from, o)
		if !to.InBounds() {
			continue
		}
		if occ, ok := b.Get(to); ok && occ.Owner == p.Owner {
			continue
		}
		dst = append(dst, to)
	}
	return dst
}

// Moves appends every pseudo-legal board move for player. Capturing any
// enemy piece, the Lion included, is allowed here.
func Moves(b *board.Board, player board.Player, dst []move.Action) []move.Action {
	var scratch [8]board.Position
	for r := 0; r < board.Rows; r++ {
		for c := 0; c < board.Cols; c++ {
			if b[r][c].Empty() || b[r][c].Owner != player {
				continue
			}
			from := board.Position{Row: r, Col: c}
			for _, to := range Destinations(b, from, scratch[:0]) {
				dst = append(dst, move.NewMove(from, to))
			}
		}
	}
	return dst
}

// Drops appends every pseudo-legal drop for player given their hand. A
// Chick never drops onto the player's promotion row.
func Drops(b *board.Board, hand *board.Hand, player board.Player, dst []move.Action) []move.Action {
	for _, k := range hand.Kinds() {
		for r := 0; r < board.Rows; r++ {
			if k == board.Chick && r == player.PromotionRow() {
				continue
			}
			for c := 0; c < board.Cols; c++ {
				if b[r][c].Empty() {
					dst = append(dst, move.NewDrop(k, board.Position{Row: r, Col: c}))
				}
			}
		}
	}
	return dst
}

// PseudoActions is Moves followed by Drops.
func PseudoActions(b *board.Board, hand *board.Hand, player board.Player) []move.Action {
	actions := make([]move.Action, 0, 32)
	actions = Moves(b, player, actions)
	return Drops(b, hand, player, actions)
}
