package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/recordio"
)

func record(t *testing.T, created time.Time, notation ...string) *recordio.Record {
	t.Helper()
	r := recordio.NewRecord([2]string{"alice", "bob"}, board.First, game.DefaultRules())
	r.Created = created
	s := game.InitialState()
	for _, n := range notation {
		a, err := move.Parse(n)
		require.NoError(t, err)
		s, err = game.Play(s, a)
		require.NoError(t, err)
		r.Append(a, s)
	}
	return r
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	r := record(t, time.UnixMilli(1700000000000).UTC(), "b2-b3", "b4-b3")
	r.Forfeit(board.Second)
	require.NoError(t, st.SaveGame(ctx, r))

	got, err := st.GetGame(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Players, got.Players)
	assert.Equal(t, r.Actions, got.Actions)
	assert.Equal(t, game.Win(board.First), got.Outcome)
	assert.Equal(t, recordio.TerminationForfeit, got.Termination)
	assert.True(t, r.Created.Equal(got.Created))

	states, err := recordio.Replay(got)
	require.NoError(t, err)
	assert.Len(t, states, 4)

	_, err = st.GetGame(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	base := time.UnixMilli(1700000000000).UTC()
	var ids []string
	for i := 0; i < 3; i++ {
		r := record(t, base.Add(time.Duration(i)*time.Minute), "b2-b3")
		require.NoError(t, st.SaveGame(ctx, r))
		ids = append(ids, r.ID)
	}
	games, err := st.ListGames(ctx, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, ids[2], games[0].ID)
	assert.Equal(t, ids[1], games[1].ID)

	tally, err := st.Tally(ctx)
	require.NoError(t, err)
	assert.Empty(t, tally)
}
