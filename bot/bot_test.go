package bot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	aibot "github.com/domino14/dobutsu/ai/bot"
	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/config"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/session"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

type collector struct {
	mu     sync.Mutex
	events map[string][]session.Event
}

func (c *collector) Send(connID string, ev session.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[connID] = append(c.events[connID], ev)
	return nil
}

func newService(t *testing.T) (*Service, *collector) {
	t.Helper()
	cfg := config.DefaultConfig()
	player, err := aibot.NewPlayer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	out := &collector{events: map[string][]session.Event{}}
	return NewService(cfg, player, session.NewRegistry(out, game.DefaultRules())), out
}

func TestHandleMoveRequest(t *testing.T) {
	is := is.New(t)
	svc, _ := newService(t)
	st := game.InitialState()
	data, err := json.Marshal(MoveRequest{State: st, Difficulty: aibot.Easy})
	is.NoErr(err)

	resp := svc.handle(context.Background(), data)
	is.Equal(resp.Error, "")
	is.True(resp.Action != nil)
	is.True(game.IsLegal(st, *resp.Action))

	resp = svc.handle(context.Background(), []byte(`{"state":null}`))
	is.True(resp.Error != "")

	over := game.Forfeit(st, board.First)
	data, err = json.Marshal(MoveRequest{State: over, Difficulty: aibot.Hard})
	is.NoErr(err)
	resp = svc.handle(context.Background(), data)
	is.True(resp.Action == nil)
	is.True(resp.Error != "")
}

func TestParseRoomSubject(t *testing.T) {
	is := is.New(t)
	room, op, err := parseRoomSubject("dobutsu.room", "dobutsu.room.abc.move")
	is.NoErr(err)
	is.Equal(room, "abc")
	is.Equal(op, OpMove)

	for _, bad := range []string{"dobutsu.room.abc", "other.abc.move", "dobutsu.room.a b.move", "dobutsu.room.abc.events.x"} {
		_, _, err := parseRoomSubject("dobutsu.room", bad)
		is.True(errors.Is(err, ErrBadSubject))
	}
	is.Equal(EventSubject("dobutsu.room", "abc", "c1"), "dobutsu.room.abc.events.c1")
}

func roomMsg(t *testing.T, conn string, a *move.Action) []byte {
	t.Helper()
	data, err := json.Marshal(RoomMessage{ConnID: conn, Action: a})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandleRoom(t *testing.T) {
	is := is.New(t)
	svc, out := newService(t)
	subj := func(op string) string { return "dobutsu.room.r1." + op }

	reply := svc.handleRoom(subj(OpJoin), roomMsg(t, "alice", nil))
	is.Equal(reply.Error, "")
	is.Equal(*reply.Role, board.First)
	reply = svc.handleRoom(subj(OpJoin), roomMsg(t, "bob", nil))
	is.Equal(*reply.Role, board.Second)

	a, err := move.Parse("b2-b3")
	is.NoErr(err)
	reply = svc.handleRoom(subj(OpMove), roomMsg(t, "bob", &a))
	is.True(reply.Error != "")
	reply = svc.handleRoom(subj(OpMove), roomMsg(t, "alice", &a))
	is.Equal(reply.Error, "")
	evs := out.events["bob"]
	is.Equal(evs[len(evs)-1].Type, session.EventGameStateUpdate)

	reply = svc.handleRoom(subj(OpMove), roomMsg(t, "alice", nil))
	is.True(reply.Error != "")
	reply = svc.handleRoom(subj("dance"), roomMsg(t, "alice", nil))
	is.True(reply.Error != "")
	reply = svc.handleRoom(subj(OpJoin), roomMsg(t, "bad.id", nil))
	is.True(reply.Error != "")

	reply = svc.handleRoom(subj(OpLeave), roomMsg(t, "alice", nil))
	is.Equal(reply.Error, "")
	evs = out.events["bob"]
	is.Equal(evs[len(evs)-1].Type, session.EventOpponentDisconnected)
}

type fakeRequester struct {
	fails int
	calls int
	reply []byte
}

func (f *fakeRequester) RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error) {
	f.calls++
	if f.calls <= f.fails {
		return nil, nats.ErrTimeout
	}
	return &nats.Msg{Subject: subj, Data: f.reply}, nil
}

func TestClientRetries(t *testing.T) {
	is := is.New(t)
	want, err := move.Parse("b2-b3")
	is.NoErr(err)
	reply, err := json.Marshal(MoveResponse{Action: &want})
	is.NoErr(err)

	f := &fakeRequester{fails: 2, reply: reply}
	c := &Client{nc: f, channel: "dobutsu.bot", timeout: time.Second, attempts: 3}
	got, err := c.RequestMove(context.Background(), game.InitialState(), aibot.Easy)
	is.NoErr(err)
	is.Equal(got, want)
	is.Equal(f.calls, 3)

	f = &fakeRequester{fails: 5, reply: reply}
	c.nc = f
	_, err = c.RequestMove(context.Background(), game.InitialState(), aibot.Easy)
	is.True(errors.Is(err, nats.ErrTimeout))
	is.Equal(f.calls, 3)
}

func TestClientDoesNotRetryBotErrors(t *testing.T) {
	is := is.New(t)
	reply, err := json.Marshal(MoveResponse{Error: "Could not select an action"})
	is.NoErr(err)
	f := &fakeRequester{reply: reply}
	c := &Client{nc: f, channel: "dobutsu.bot", timeout: time.Second, attempts: 3}
	_, err = c.RequestMove(context.Background(), game.InitialState(), aibot.Easy)
	is.True(errors.Is(err, ErrBotError))
	is.Equal(f.calls, 1)
}
