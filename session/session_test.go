package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/recordio"
)

type inbox struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newInbox() *inbox { return &inbox{events: map[string][]Event{}} }

// Send round-trips through JSON like a real transport.
func (b *inbox) Send(connID string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var back Event
	if err := json.Unmarshal(data, &back); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[connID] = append(b.events[connID], back)
	return nil
}

func (b *inbox) last(connID string) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	evs := b.events[connID]
	if len(evs) == 0 {
		return Event{}
	}
	return evs[len(evs)-1]
}

type memArchive struct {
	mu      sync.Mutex
	records []*recordio.Record
}

func (a *memArchive) SaveGame(ctx context.Context, r *recordio.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, r)
	return nil
}

func mustParse(t *testing.T, s string) move.Action {
	t.Helper()
	a, err := move.Parse(s)
	require.NoError(t, err)
	return a
}

func TestJoinAssignsSeatsAndStarts(t *testing.T) {
	out := newInbox()
	reg := NewRegistry(out, game.DefaultRules())

	p, err := reg.Join("r1", "alice")
	require.NoError(t, err)
	assert.Equal(t, board.First, p)
	assert.Equal(t, EventWaitingForOpponent, out.last("alice").Type)
	_, err = reg.State("r1")
	assert.ErrorIs(t, err, ErrGameNotStarted)

	_, err = reg.Join("r1", "alice")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	p, err = reg.Join("r1", "bob")
	require.NoError(t, err)
	assert.Equal(t, board.Second, p)
	for conn, role := range map[string]board.Player{"alice": board.First, "bob": board.Second} {
		ev := out.last(conn)
		assert.Equal(t, EventGameStart, ev.Type)
		require.NotNil(t, ev.Role)
		assert.Equal(t, role, *ev.Role)
		require.NotNil(t, ev.State)
		assert.Equal(t, board.First, ev.State.Turn)
		assert.NotEmpty(t, ev.GameID)
	}

	_, err = reg.Join("r1", "carol")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, EventRoomFull, out.last("carol").Type)
	assert.Equal(t, []string{"r1"}, reg.Rooms())
}

func TestSubmitOrderingAndRejections(t *testing.T) {
	out := newInbox()
	reg := NewRegistry(out, game.DefaultRules())
	_, err := reg.Submit("nope", "alice", mustParse(t, "b2-b3"))
	assert.ErrorIs(t, err, ErrNoSuchRoom)

	_, _ = reg.Join("r", "alice")
	_, err = reg.Submit("r", "alice", mustParse(t, "b2-b3"))
	assert.ErrorIs(t, err, ErrGameNotStarted)
	_, _ = reg.Join("r", "bob")

	before, err := reg.State("r")
	require.NoError(t, err)

	_, err = reg.Submit("r", "bob", mustParse(t, "b3-b2"))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	assert.Equal(t, EventError, out.last("bob").Type)

	_, err = reg.Submit("r", "alice", mustParse(t, "a1-a2"))
	assert.ErrorIs(t, err, game.ErrIllegalAction)

	_, err = reg.Submit("r", "mallory", mustParse(t, "b2-b3"))
	assert.ErrorIs(t, err, ErrNotInRoom)

	after, err := reg.State("r")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	ns, err := reg.Submit("r", "alice", mustParse(t, "b2-b3"))
	require.NoError(t, err)
	assert.Equal(t, board.Second, ns.Turn)
	for _, conn := range []string{"alice", "bob"} {
		ev := out.last(conn)
		assert.Equal(t, EventGameStateUpdate, ev.Type)
		assert.Equal(t, board.Second, ev.State.Turn)
	}
}

func TestLeaveForfeitsAndArchives(t *testing.T) {
	out := newInbox()
	arch := &memArchive{}
	reg := NewRegistry(out, game.DefaultRules())
	reg.SetArchiver(arch)
	_, _ = reg.Join("r", "alice")
	_, _ = reg.Join("r", "bob")
	_, err := reg.Submit("r", "alice", mustParse(t, "b2-b3"))
	require.NoError(t, err)

	require.NoError(t, reg.Leave("r", "bob"))
	ev := out.last("alice")
	assert.Equal(t, EventOpponentDisconnected, ev.Type)
	require.NotNil(t, ev.State)
	assert.Equal(t, game.Win(board.First), ev.State.Outcome)
	assert.Empty(t, reg.Rooms())

	require.Len(t, arch.records, 1)
	rec := arch.records[0]
	assert.Equal(t, recordio.TerminationForfeit, rec.Termination)
	assert.Equal(t, [2]string{"alice", "bob"}, rec.Players)
	states, err := recordio.Replay(rec)
	require.NoError(t, err)
	assert.Equal(t, game.Win(board.First), states[len(states)-1].Outcome)

	assert.True(t, errors.Is(reg.Leave("r", "alice"), ErrNoSuchRoom))
}

func TestRematchSwapsOnCoinFlip(t *testing.T) {
	out := newInbox()
	reg := NewRegistry(out, game.DefaultRules())
	reg.SetCoinFlip(func() bool { return true })
	_, _ = reg.Join("r", "alice")
	_, _ = reg.Join("r", "bob")

	assert.ErrorIs(t, reg.Rematch("r", "alice"), ErrGameNotOver)

	// Shuffle both Giraffes until the start position comes up a third time.
	shuffle := []string{"c1-c2", "a4-a3", "c2-c1", "a3-a4"}
	for i := 0; i < 8; i++ {
		_, err := reg.Submit("r", seatFor(t, reg, "r", out), mustParse(t, shuffle[i%4]))
		require.NoError(t, err, shuffle[i%4])
	}
	st, err := reg.State("r")
	require.NoError(t, err)
	require.Equal(t, game.Draw(), st.Outcome)

	require.NoError(t, reg.Rematch("r", "bob"))
	ev := out.last("bob")
	assert.Equal(t, EventGameStart, ev.Type)
	assert.Equal(t, board.First, *ev.Role)
	assert.Equal(t, board.Second, *out.last("alice").Role)
}

// seatFor returns whichever connection is on turn.
func seatFor(t *testing.T, reg *Registry, roomID string, out *inbox) string {
	t.Helper()
	st, err := reg.State(roomID)
	require.NoError(t, err)
	for _, conn := range []string{"alice", "bob"} {
		for _, ev := range out.events[conn] {
			if ev.Type == EventGameStart && *ev.Role == st.Turn {
				return conn
			}
		}
	}
	t.Fatal("no connection on turn")
	return ""
}

func TestMirrorPredictAndConfirm(t *testing.T) {
	out := newInbox()
	reg := NewRegistry(out, game.Rules{AllowChickDropMate: true})
	_, _ = reg.Join("r", "alice")
	_, _ = reg.Join("r", "bob")
	bobStart := out.last("bob")

	alice := NewMirror(board.Second, game.InitialState())
	alice.Start(out.last("alice"))
	assert.Equal(t, board.First, alice.Me())
	assert.True(t, alice.State().Rules.AllowChickDropMate)

	_, err := alice.Predict(mustParse(t, "b3-b2"))
	assert.ErrorIs(t, err, game.ErrIllegalAction)

	a := mustParse(t, "b2-b3")
	predicted, err := alice.Predict(a)
	require.NoError(t, err)
	assert.Equal(t, predicted, alice.State())

	_, err = reg.Submit("r", "alice", a)
	require.NoError(t, err)
	matched, err := alice.Confirm(out.last("alice").State)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, board.Second, alice.State().Turn)

	bob := NewMirror(board.First, game.InitialState())
	bob.Start(bobStart)
	_, err = bob.Predict(mustParse(t, "b2-b3"))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	// A prediction the server never accepted is thrown away.
	start := game.NewState(board.First, game.DefaultRules())
	m := NewMirror(board.First, start)
	_, err = m.Predict(mustParse(t, "c1-c2"))
	require.NoError(t, err)
	other := game.Apply(start, mustParse(t, "b2-b3"))
	matched, err = m.Confirm(other)
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, 1, m.Mismatches())
	assert.Equal(t, other.Board, m.State().Board)
}
