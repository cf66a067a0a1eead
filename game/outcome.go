package game

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/movegen"
)

type OutcomeType uint8

const (
	OutcomeNone OutcomeType = iota
	OutcomeWinner
	OutcomeDraw
)

// Outcome is None while the game is running.
type Outcome struct {
	Type   OutcomeType
	Winner board.Player
}

func Win(p board.Player) Outcome {
	return Outcome{Type: OutcomeWinner, Winner: p}
}

func Draw() Outcome {
	return Outcome{Type: OutcomeDraw}
}

func (o Outcome) Over() bool {
	return o.Type != OutcomeNone
}

func (o Outcome) Decisive() bool {
	return o.Type == OutcomeWinner
}

func (o Outcome) String() string {
	switch o.Type {
	case OutcomeNone:
		return "in progress"
	case OutcomeWinner:
		return o.Winner.String() + " wins"
	case OutcomeDraw:
		return "draw"
	}
	return fmt.Sprintf("Outcome(%d)", o.Type)
}

type outcomeJSON struct {
	Type   string        `json:"type"`
	Winner *board.Player `json:"winner,omitempty"`
}

// MarshalJSON writes null while the game is running.
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o.Type {
	case OutcomeNone:
		return []byte("null"), nil
	case OutcomeWinner:
		w := o.Winner
		return json.Marshal(outcomeJSON{Type: "Winner", Winner: &w})
	case OutcomeDraw:
		return json.Marshal(outcomeJSON{Type: "Draw"})
	}
	return nil, fmt.Errorf("unknown outcome type %d", o.Type)
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Outcome{}
		return nil
	}
	var w outcomeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "Winner":
		if w.Winner == nil {
			return fmt.Errorf("winner outcome without a winner")
		}
		*o = Win(*w.Winner)
	case "Draw":
		*o = Draw()
	default:
		return fmt.Errorf("unknown outcome type %q", w.Type)
	}
	return nil
}

// detectOutcome judges s from the side to move. It does not look at
// repetitions; Apply does that once a win has been ruled out.
func detectOutcome(s *State) Outcome {
	next := s.Turn
	if _, ok := s.Board.Find(next.Opponent(), board.Lion); !ok {
		return Win(next)
	}
	if _, ok := s.Board.Find(next, board.Lion); !ok {
		return Win(next.Opponent())
	}
	for _, p := range board.Players {
		if tried(&s.Board, p) {
			return Win(p)
		}
	}
	if !hasLegalAction(&s.Board, &s.Hands, next, s.Rules) {
		return Win(next.Opponent())
	}
	return Outcome{}
}

// tried reports whether p's Lion stands unattacked on p's promotion row.
func tried(b *board.Board, p board.Player) bool {
	lion, ok := b.Find(p, board.Lion)
	if !ok || lion.Row != p.PromotionRow() {
		return false
	}
	return !movegen.Attacked(b, lion, p.Opponent())
}

// MarshalText writes "First", "Second", "Draw", or nothing for a game in
// progress.
func (o Outcome) MarshalText() ([]byte, error) {
	switch o.Type {
	case OutcomeNone:
		return []byte{}, nil
	case OutcomeWinner:
		return o.Winner.MarshalText()
	case OutcomeDraw:
		return []byte("Draw"), nil
	}
	return nil, fmt.Errorf("unknown outcome type %d", o.Type)
}

func (o *Outcome) UnmarshalText(text []byte) error {
	switch s := string(bytes.TrimSpace(text)); s {
	case "":
		*o = Outcome{}
	case "Draw", "draw":
		*o = Draw()
	default:
		p, err := board.ParsePlayer(s)
		if err != nil {
			return err
		}
		*o = Win(p)
	}
	return nil
}
