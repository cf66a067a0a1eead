// Package game is the authoritative rules engine: legal action
// generation, outcome detection and the state transition. Every function
// here treats its input State as read-only, so the same code serves the
// server, a predicting client and the search.
package game

import (
	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/movegen"
)

// State is one position plus the bookkeeping needed to judge it.
type State struct {
	Board    board.Board    `json:"board"`
	Hands    [2]board.Hand  `json:"hands"`
	Turn     board.Player   `json:"turn"`
	PlyCount int            `json:"plyCount"`
	// LastAction is nil before the first ply.
	LastAction *move.Action `json:"lastAction"`
	IsCheck    bool         `json:"isCheck"`
	Outcome    Outcome      `json:"outcome"`
	// PositionHistory counts occurrences of each (board, hands, turn).
	PositionHistory map[CanonicalKey]int `json:"positionHistory"`

	Rules Rules `json:"-"`
}

// InitialState is the standard start: First to move, default rules.
func InitialState() *State {
	return NewState(board.First, DefaultRules())
}

// NewState builds the starting layout with the given side to move.
func NewState(first board.Player, rules Rules) *State {
	var hands [2]board.Hand
	return FromPosition(board.Initial(), hands, first, rules)
}

// FromPosition wraps an arbitrary position in a fresh State with ply 1.
// Check and outcome are computed as after any transition, so a position
// that is already decided comes back terminal.
func FromPosition(b board.Board, hands [2]board.Hand, turn board.Player, rules Rules) *State {
	s := &State{
		Board:           b,
		Hands:           hands,
		Turn:            turn,
		PlyCount:        1,
		Rules:           rules,
		PositionHistory: map[CanonicalKey]int{},
	}
	s.PositionHistory[s.Key()] = 1
	s.IsCheck = movegen.InCheck(&s.Board, s.Turn)
	s.Outcome = detectOutcome(s)
	return s
}

// Copy returns a State sharing nothing with s.
func (s *State) Copy() *State {
	ns := *s
	if s.LastAction != nil {
		la := *s.LastAction
		ns.LastAction = &la
	}
	ns.PositionHistory = make(map[CanonicalKey]int, len(s.PositionHistory))
	for k, v := range s.PositionHistory {
		ns.PositionHistory[k] = v
	}
	return &ns
}

// Hand returns p's hand.
func (s *State) Hand(p board.Player) *board.Hand {
	return &s.Hands[p]
}
