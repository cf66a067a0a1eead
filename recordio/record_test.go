package recordio

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

func play(t *testing.T, r *Record, notation ...string) *game.State {
	t.Helper()
	s := game.NewState(r.Starter, r.Rules)
	for _, n := range notation {
		a, err := move.Parse(n)
		if err != nil {
			t.Fatal(err)
		}
		s, err = game.Play(s, a)
		if err != nil {
			t.Fatalf("%s: %v", n, err)
		}
		r.Append(a, s)
	}
	return s
}

func TestYAMLRoundTrip(t *testing.T) {
	is := is.New(t)
	r := NewRecord([2]string{"alice", "bot:hard"}, board.First, game.DefaultRules())
	end := play(t, r, "b2-b3", "b4-b3")

	var buf bytes.Buffer
	is.NoErr(WriteYAML(&buf, r))
	is.True(strings.Contains(buf.String(), "- b2-b3"))

	back, err := ReadYAML(&buf)
	is.NoErr(err)
	is.Equal(back.ID, r.ID)
	is.Equal(back.Players, r.Players)
	is.Equal(back.Actions, r.Actions)
	is.Equal(back.Outcome, game.Outcome{})
	is.True(back.Created.Equal(r.Created))

	states, err := Replay(back)
	is.NoErr(err)
	is.Equal(len(states), 3)
	want, _ := end.Fingerprint()
	got, _ := states[2].Fingerprint()
	is.Equal(got, want)
}

func TestReplayRejectsIllegalAction(t *testing.T) {
	is := is.New(t)
	in := `
id: x
players: [a, b]
starter: First
actions: [b2-b3, b3-b2]
`
	r, err := ReadYAML(strings.NewReader(in))
	is.NoErr(err)
	states, err := Replay(r)
	is.True(errors.Is(err, game.ErrIllegalAction))
	is.Equal(len(states), 2)
}

func TestForfeitReplays(t *testing.T) {
	is := is.New(t)
	r := NewRecord([2]string{"a", "b"}, board.Second, game.DefaultRules())
	play(t, r, "b3-b2")
	r.Forfeit(board.First)
	is.Equal(r.Outcome, game.Win(board.Second))
	is.Equal(r.Termination, TerminationForfeit)

	f := filepath.Join(t.TempDir(), "g.yaml")
	is.NoErr(SaveFile(f, r))
	back, err := LoadFile(f)
	is.NoErr(err)
	states, err := Replay(back)
	is.NoErr(err)
	is.Equal(states[len(states)-1].Outcome, game.Win(board.Second))
}

func TestOutcomeMismatch(t *testing.T) {
	is := is.New(t)
	r := NewRecord([2]string{"a", "b"}, board.First, game.DefaultRules())
	play(t, r, "b2-b3")
	r.Outcome = game.Draw()
	_, err := Replay(r)
	is.True(errors.Is(err, ErrOutcomeMismatch))
}
