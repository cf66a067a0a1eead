package move

import (
	"encoding/json"
	"fmt"

	"github.com/domino14/dobutsu/board"
)

type actionJSON struct {
	Type string           `json:"type"`
	From *board.Position  `json:"from,omitempty"`
	To   *board.Position  `json:"to"`
	Kind *board.PieceKind `json:"kind,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	to := a.To
	w := actionJSON{Type: a.Type.String(), To: &to}
	switch a.Type {
	case ActionTypeMove:
		from := a.From
		w.From = &from
	case ActionTypeDrop:
		kind := a.Kind
		w.Kind = &kind
	}
	return json.Marshal(w)
}

// UnmarshalJSON rejects anything structurally wrong, so that peer input
// decoded here is safe to look up in a legal action list.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w actionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}
	if w.To == nil {
		return fmt.Errorf("%w: missing destination", ErrMalformedAction)
	}
	var na Action
	switch w.Type {
	case "Move":
		if w.From == nil || w.Kind != nil {
			return fmt.Errorf("%w: a move needs from and no kind", ErrMalformedAction)
		}
		na = NewMove(*w.From, *w.To)
	case "Drop":
		if w.Kind == nil || w.From != nil {
			return fmt.Errorf("%w: a drop needs kind and no from", ErrMalformedAction)
		}
		na = NewDrop(*w.Kind, *w.To)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedAction, w.Type)
	}
	if err := na.Validate(); err != nil {
		return err
	}
	*a = na
	return nil
}

// MarshalText writes the shell notation. YAML game records use it.
func (a Action) MarshalText() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	na, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = na
	return nil
}
