// Package board holds the Dobutsu Shogi grid: 4 rows by 3 columns, row 0
// being Second's back rank and row 3 First's.
package board

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Rows = 4
	Cols = 3
)

var ErrBadPosition = errors.New("bad position notation")

// Position is a 0-indexed (row, col) square.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < Rows && p.Col >= 0 && p.Col < Cols
}

// Add returns the square offset by (dr, dc). It may be out of bounds.
func (p Position) Add(dr, dc int) Position {
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// String gives the shell notation: columns a-c from left, ranks 1-4
// counted from First's back rank. Row 3, col 0 is "a1".
func (p Position) String() string {
	if !p.InBounds() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col, Rows-p.Row)
}

// ParsePosition is the inverse of Position.String.
func ParsePosition(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrBadPosition, s)
	}
	pos := Position{Col: int(s[0] - 'a'), Row: Rows - int(s[1]-'0')}
	if !pos.InBounds() {
		return Position{}, fmt.Errorf("%w: %q", ErrBadPosition, s)
	}
	return pos, nil
}

// Board is a value type; assigning it makes an independent copy. All
// speculative simulation relies on that.
type Board [Rows][Cols]Piece

// Initial returns the starting layout.
func Initial() Board {
	var b Board
	b[0] = [Cols]Piece{{Giraffe, Second}, {Lion, Second}, {Elephant, Second}}
	b[1][1] = Piece{Chick, Second}
	b[2][1] = Piece{Chick, First}
	b[3] = [Cols]Piece{{Elephant, First}, {Lion, First}, {Giraffe, First}}
	return b
}

// Get returns the piece at pos. ok is false for empty or out-of-bounds squares.
func (b *Board) Get(pos Position) (Piece, bool) {
	if !pos.InBounds() {
		return Piece{}, false
	}
	p := b[pos.Row][pos.Col]
	return p, !p.Empty()
}

// Set places p at pos; a zero Piece clears the square. Out-of-bounds is a no-op.
func (b *Board) Set(pos Position, p Piece) {
	if !pos.InBounds() {
		return
	}
	b[pos.Row][pos.Col] = p
}

func (b *Board) Clear(pos Position) {
	b.Set(pos, Piece{})
}

// Find returns the first square holding owner's piece of the given kind.
func (b *Board) Find(owner Player, kind PieceKind) (Position, bool) {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			p := b[r][c]
			if p.Kind == kind && p.Owner == owner {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// Count returns how many of owner's pieces are on the board.
func (b *Board) Count(owner Player) int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if !b[r][c].Empty() && b[r][c].Owner == owner {
				n++
			}
		}
	}
	return n
}
