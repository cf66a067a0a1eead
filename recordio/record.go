// Package recordio reads and writes finished or running games as YAML
// records, and replays them through the rules engine.
package recordio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

var ErrOutcomeMismatch = errors.New("recorded outcome does not match replay")

// Termination says how a game stopped.
type Termination string

const (
	TerminationNone    Termination = ""
	TerminationNormal  Termination = "normal"
	TerminationForfeit Termination = "forfeit"
)

// Record is enough to rebuild every State of a game.
type Record struct {
	ID      string    `yaml:"id"`
	Created time.Time `yaml:"created"`
	// Players are the names on the First and Second seats.
	Players [2]string    `yaml:"players"`
	Starter board.Player `yaml:"starter"`
	Rules   game.Rules   `yaml:"rules"`
	Actions []move.Action `yaml:"actions"`

	Outcome     game.Outcome `yaml:"outcome"`
	Termination Termination  `yaml:"termination,omitempty"`
}

func NewRecord(players [2]string, starter board.Player, rules game.Rules) *Record {
	return &Record{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Players: players,
		Starter: starter,
		Rules:   rules,
	}
}

// Append records a after the engine accepted it, taking the outcome from
// the resulting state.
func (r *Record) Append(a move.Action, after *game.State) {
	r.Actions = append(r.Actions, a)
	r.Outcome = after.Outcome
	if after.Outcome.Over() {
		r.Termination = TerminationNormal
	}
}

// Forfeit ends the record with loser resigning or disconnecting.
func (r *Record) Forfeit(loser board.Player) {
	if r.Outcome.Over() {
		return
	}
	r.Outcome = game.Win(loser.Opponent())
	r.Termination = TerminationForfeit
}

// Replay returns every state of the game, the start included. Each
// action goes through game.Play, so a doctored record fails on the first
// illegal action.
func Replay(r *Record) ([]*game.State, error) {
	s := game.NewState(r.Starter, r.Rules)
	states := []*game.State{s}
	for i, a := range r.Actions {
		ns, err := game.Play(s, a)
		if err != nil {
			return states, fmt.Errorf("action %d (%v): %w", i+1, a, err)
		}
		s = ns
		states = append(states, s)
	}
	if r.Termination == TerminationForfeit && r.Outcome.Decisive() && !s.Outcome.Over() {
		s = game.Forfeit(s, r.Outcome.Winner.Opponent())
		states = append(states, s)
	}
	if r.Outcome.Over() && s.Outcome != r.Outcome {
		return states, fmt.Errorf("%w: recorded %v, replayed %v", ErrOutcomeMismatch, r.Outcome, s.Outcome)
	}
	return states, nil
}

func WriteYAML(w io.Writer, r *Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func ReadYAML(rd io.Reader) (*Record, error) {
	r := &Record{}
	if err := yaml.NewDecoder(rd).Decode(r); err != nil {
		return nil, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r, nil
}

func SaveFile(path string, r *Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteYAML(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadYAML(f)
}
