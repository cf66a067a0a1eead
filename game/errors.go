package game

import "errors"

var (
	// ErrIllegalAction means the action is not in LegalActions for the
	// current state. The caller keeps the prior state.
	ErrIllegalAction = errors.New("illegal action")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameOver      = errors.New("game is already over")
)
