// Package move defines Action, the one thing a player can do on a turn:
// move a piece on the board or drop one from hand.
package move

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/domino14/dobutsu/board"
)

var (
	ErrMalformedAction     = errors.New("malformed action")
	ErrOutOfBoundsPosition = errors.New("position out of bounds")
)

// ActionType tags which variant of Action is in use.
type ActionType uint8

const (
	ActionTypeMove ActionType = iota
	ActionTypeDrop
)

func (t ActionType) String() string {
	switch t {
	case ActionTypeMove:
		return "Move"
	case ActionTypeDrop:
		return "Drop"
	}
	return fmt.Sprintf("ActionType(%d)", t)
}

// Action is a tagged union. A Move uses From and To; a Drop uses Kind
// and To. Unused fields stay zero so that Actions compare with ==.
type Action struct {
	Type ActionType
	From board.Position
	To   board.Position
	Kind board.PieceKind
}

func NewMove(from, to board.Position) Action {
	return Action{Type: ActionTypeMove, From: from, To: to}
}

func NewDrop(kind board.PieceKind, to board.Position) Action {
	return Action{Type: ActionTypeDrop, Kind: kind, To: to}
}

func (a Action) IsMove() bool { return a.Type == ActionTypeMove }
func (a Action) IsDrop() bool { return a.Type == ActionTypeDrop }

// Validate checks the structure of a only: it says nothing about whether
// the action is legal in some position.
func (a Action) Validate() error {
	switch a.Type {
	case ActionTypeMove:
		if !a.From.InBounds() {
			return fmt.Errorf("%w: from %v", ErrOutOfBoundsPosition, a.From)
		}
		if !a.To.InBounds() {
			return fmt.Errorf("%w: to %v", ErrOutOfBoundsPosition, a.To)
		}
		if a.From == a.To {
			return fmt.Errorf("%w: move to the same square", ErrMalformedAction)
		}
		if a.Kind != board.NoKind {
			return fmt.Errorf("%w: a move carries no piece kind", ErrMalformedAction)
		}
	case ActionTypeDrop:
		if !a.To.InBounds() {
			return fmt.Errorf("%w: to %v", ErrOutOfBoundsPosition, a.To)
		}
		if !a.Kind.Droppable() {
			return fmt.Errorf("%w: cannot drop %v", ErrMalformedAction, a.Kind)
		}
		if a.From != (board.Position{}) {
			return fmt.Errorf("%w: a drop has no origin", ErrMalformedAction)
		}
	default:
		return fmt.Errorf("%w: unknown type %d", ErrMalformedAction, a.Type)
	}
	return nil
}

// String gives the shell notation, "b2-b3" for a move and "C*a3" for a drop.
func (a Action) String() string {
	switch a.Type {
	case ActionTypeMove:
		return a.From.String() + "-" + a.To.String()
	case ActionTypeDrop:
		return string(a.Kind.Letter()) + "*" + a.To.String()
	}
	return fmt.Sprintf("<invalid action type %d>", a.Type)
}

var reMove, reDrop *regexp.Regexp

func init() {
	reMove = regexp.MustCompile(`^(?P<from>[a-c][1-4])-?(?P<to>[a-c][1-4])$`)
	reDrop = regexp.MustCompile(`^(?P<kind>[gec])\*(?P<to>[a-c][1-4])$`)
}

// Parse reads the notation written by String, ignoring case.
func Parse(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := reDrop.FindStringSubmatch(s); m != nil {
		kind, err := board.ParsePieceKind(m[1])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
		to, err := board.ParsePosition(m[2])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrOutOfBoundsPosition, err)
		}
		return NewDrop(kind, to), nil
	}
	if m := reMove.FindStringSubmatch(s); m != nil {
		from, err := board.ParsePosition(m[1])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrOutOfBoundsPosition, err)
		}
		to, err := board.ParsePosition(m[2])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrOutOfBoundsPosition, err)
		}
		a := NewMove(from, to)
		return a, a.Validate()
	}
	return Action{}, fmt.Errorf("%w: %q", ErrMalformedAction, s)
}
