// Package evaluator scores a non-terminal position for the search. The
// score is from one player's point of view: positive is good for them.
package evaluator

import (
	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
)

// Weights selects and scales the heuristic terms.
type Weights struct {
	Lion     int `yaml:"lion"`
	Giraffe  int `yaml:"giraffe"`
	Elephant int `yaml:"elephant"`
	Chick    int `yaml:"chick"`
	Hen      int `yaml:"hen"`

	// Positional turns on the per-square tables.
	Positional bool `yaml:"positional"`
	// Mobility is the weight per legal action of difference. 0 disables
	// the term, which also skips generating the actions.
	Mobility int `yaml:"mobility"`
	// Check is added when the opponent is in check and subtracted when
	// we are.
	Check int `yaml:"check"`
}

// MaterialOnly is the weakest heuristic.
func MaterialOnly() Weights {
	return Weights{Lion: 10000, Giraffe: 50, Elephant: 50, Chick: 10, Hen: 70}
}

// DefaultWeights uses every term.
func DefaultWeights() Weights {
	w := MaterialOnly()
	w.Positional = true
	w.Mobility = 2
	w.Check = 15
	return w
}

func (w *Weights) Value(k board.PieceKind) int {
	switch k {
	case board.Lion:
		return w.Lion
	case board.Giraffe:
		return w.Giraffe
	case board.Elephant:
		return w.Elephant
	case board.Chick:
		return w.Chick
	case board.Hen:
		return w.Hen
	}
	return 0
}

// Square bonuses from First's side; Second reads them with rows flipped.
// Each table is symmetric left to right.
var positional = [board.NumKinds][board.Rows][board.Cols]int{
	board.Lion: {
		{8, 8, 8},
		{3, 4, 3},
		{1, 2, 1},
		{0, 1, 0},
	},
	board.Giraffe: {
		{1, 2, 1},
		{2, 4, 2},
		{2, 4, 2},
		{0, 1, 0},
	},
	board.Elephant: {
		{1, 3, 1},
		{2, 4, 2},
		{2, 4, 2},
		{0, 2, 0},
	},
	board.Chick: {
		{0, 0, 0},
		{8, 8, 8},
		{3, 4, 3},
		{0, 0, 0},
	},
	board.Hen: {
		{3, 5, 3},
		{4, 6, 4},
		{2, 4, 2},
		{0, 1, 0},
	},
}

func squareBonus(p board.Piece, r, c int) int {
	if p.Owner == board.Second {
		r = board.Rows - 1 - r
	}
	return positional[p.Kind][r][c]
}

// Evaluate is deterministic and does not modify s.
func Evaluate(s *game.State, perspective board.Player, w Weights) int {
	score := 0
	for r := 0; r < board.Rows; r++ {
		for c := 0; c < board.Cols; c++ {
			p := s.Board[r][c]
			if p.Empty() {
				continue
			}
			v := w.Value(p.Kind)
			if w.Positional {
				v += squareBonus(p, r, c)
			}
			if p.Owner == perspective {
				score += v
			} else {
				score -= v
			}
		}
	}
	for _, k := range []board.PieceKind{board.Giraffe, board.Elephant, board.Chick} {
		score += w.Value(k) * s.Hands[perspective].Count(k)
		score -= w.Value(k) * s.Hands[perspective.Opponent()].Count(k)
	}
	if w.Mobility != 0 {
		mine := len(game.LegalActionsFor(s, perspective))
		theirs := len(game.LegalActionsFor(s, perspective.Opponent()))
		score += w.Mobility * (mine - theirs)
	}
	if s.IsCheck {
		if s.Turn == perspective {
			score -= w.Check
		} else {
			score += w.Check
		}
	}
	return score
}
