package game

import (
	"fmt"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/movegen"
)

// Apply returns the state after a. It trusts that a is legal; callers
// holding untrusted input go through Play. s is not modified.
//
// PlyCount counts full moves: it goes up each time Second completes a ply.
func Apply(s *State, a move.Action) *State {
	mover := s.Turn
	ns := &State{
		Board:    s.Board,
		Hands:    s.Hands,
		Turn:     mover.Opponent(),
		PlyCount: s.PlyCount,
		Rules:    s.Rules,
	}
	place(&ns.Board, &ns.Hands[mover], a, mover)
	if mover == board.Second {
		ns.PlyCount++
	}
	last := a
	ns.LastAction = &last

	ns.PositionHistory = make(map[CanonicalKey]int, len(s.PositionHistory)+1)
	for k, v := range s.PositionHistory {
		ns.PositionHistory[k] = v
	}
	key := ns.Key()
	ns.PositionHistory[key]++

	ns.IsCheck = movegen.InCheck(&ns.Board, ns.Turn)
	ns.Outcome = detectOutcome(ns)
	if !ns.Outcome.Over() && ns.PositionHistory[key] >= RepetitionLimit {
		ns.Outcome = Draw()
	}
	return ns
}

// Play validates a against s before applying it.
func Play(s *State, a move.Action) (*State, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if s.Outcome.Over() {
		return nil, fmt.Errorf("%w: %v", ErrGameOver, s.Outcome)
	}
	if !IsLegal(s, a) {
		return nil, fmt.Errorf("%w: %v by %v", ErrIllegalAction, a, s.Turn)
	}
	return Apply(s, a), nil
}

// PlayAs is Play for a caller that knows which side it speaks for.
func PlayAs(s *State, p board.Player, a move.Action) (*State, error) {
	if s.Outcome.Over() {
		return nil, fmt.Errorf("%w: %v", ErrGameOver, s.Outcome)
	}
	if p != s.Turn {
		return nil, fmt.Errorf("%w: %v to move", ErrNotYourTurn, s.Turn)
	}
	return Play(s, a)
}

// Forfeit ends a running game with loser's opponent as winner. It is
// how the room layer resolves a disconnect or a stuck side.
func Forfeit(s *State, loser board.Player) *State {
	ns := s.Copy()
	if !ns.Outcome.Over() {
		ns.Outcome = Win(loser.Opponent())
	}
	return ns
}
