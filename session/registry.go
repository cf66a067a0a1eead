// Package session runs networked games. The Registry is the single
// writer of each room's State; clients hold a Mirror.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/recordio"
)

const archiveTimeout = 5 * time.Second

// Archiver keeps finished games.
type Archiver interface {
	SaveGame(ctx context.Context, r *recordio.Record) error
}

type room struct {
	mu     sync.Mutex
	id     string
	seats  [2]string // connection ids by side; "" is an empty seat
	state  *game.State
	record *recordio.Record
	closed bool
}

func (rm *room) seatOf(connID string) (board.Player, bool) {
	for _, p := range board.Players {
		if rm.seats[p] == connID {
			return p, true
		}
	}
	return board.First, false
}

type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room

	out     Broadcaster
	archive Archiver
	rules   game.Rules
	flip    func() bool
}

func NewRegistry(out Broadcaster, rules game.Rules) *Registry {
	return &Registry{
		rooms: map[string]*room{},
		out:   out,
		rules: rules,
		flip:  func() bool { return frand.Intn(2) == 1 },
	}
}

func (r *Registry) SetArchiver(a Archiver) {
	r.archive = a
}

// SetCoinFlip replaces the rematch side swap decision.
func (r *Registry) SetCoinFlip(f func() bool) {
	r.flip = f
}

func (r *Registry) send(connID string, ev Event) {
	if connID == "" {
		return
	}
	if err := r.out.Send(connID, ev); err != nil {
		log.Err(err).Str("conn", connID).Str("event", string(ev.Type)).Msg("send-failed")
	}
}

func (r *Registry) lookup(roomID string) (*room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchRoom, roomID)
	}
	return rm, nil
}

func (r *Registry) drop(rm *room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[rm.id] == rm {
		delete(r.rooms, rm.id)
	}
}

// Rooms lists open room ids.
func (r *Registry) Rooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State is the room's current authoritative state, or nil before the
// second player arrives.
func (r *Registry) State(roomID string) (*game.State, error) {
	rm, err := r.lookup(roomID)
	if err != nil {
		return nil, err
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.state == nil {
		return nil, ErrGameNotStarted
	}
	return rm.state.Copy(), nil
}

// Join seats connID, First then Second. The second arrival starts the
// game.
func (r *Registry) Join(roomID, connID string) (board.Player, error) {
	for {
		r.mu.Lock()
		rm, ok := r.rooms[roomID]
		if !ok {
			rm = &room{id: roomID}
			r.rooms[roomID] = rm
		}
		r.mu.Unlock()

		rm.mu.Lock()
		if rm.closed {
			// Lost a race with the last Leave; make a fresh room.
			rm.mu.Unlock()
			r.drop(rm)
			continue
		}
		p, err := r.join(rm, connID)
		rm.mu.Unlock()
		return p, err
	}
}

func (r *Registry) join(rm *room, connID string) (board.Player, error) {
	if _, ok := rm.seatOf(connID); ok {
		return board.First, ErrAlreadyInRoom
	}
	var seat board.Player
	switch {
	case rm.seats[board.First] == "":
		seat = board.First
	case rm.seats[board.Second] == "":
		seat = board.Second
	default:
		r.send(connID, Event{Type: EventRoomFull, RoomID: rm.id})
		return board.First, fmt.Errorf("%w: %s", ErrRoomFull, rm.id)
	}
	rm.seats[seat] = connID
	log.Info().Str("room", rm.id).Str("conn", connID).Stringer("seat", seat).Msg("joined-room")

	if rm.seats[seat.Opponent()] == "" {
		r.send(connID, Event{Type: EventWaitingForOpponent, RoomID: rm.id})
		return seat, nil
	}
	r.start(rm)
	return seat, nil
}

// start begins a game with First to move. Callers hold rm.mu.
func (r *Registry) start(rm *room) {
	rm.state = game.NewState(board.First, r.rules)
	rm.record = recordio.NewRecord(rm.seats, board.First, r.rules)
	rules := r.rules
	for _, p := range board.Players {
		role := p
		r.send(rm.seats[p], Event{
			Type:   EventGameStart,
			RoomID: rm.id,
			GameID: rm.record.ID,
			Role:   &role,
			Rules:  &rules,
			State:  rm.state,
		})
	}
	log.Info().Str("room", rm.id).Str("game", rm.record.ID).Msg("game-started")
}

// Submit applies a on behalf of connID. Rejected actions leave the room
// untouched and are reported to the submitter only.
func (r *Registry) Submit(roomID, connID string, a move.Action) (*game.State, error) {
	rm, err := r.lookup(roomID)
	if err != nil {
		return nil, err
	}
	rm.mu.Lock()
	ns, finished, err := r.submit(rm, connID, a)
	rm.mu.Unlock()
	if err != nil {
		r.send(connID, Event{Type: EventError, RoomID: roomID, Message: err.Error()})
		return nil, err
	}
	if finished != nil {
		r.store(finished)
	}
	return ns, nil
}

func (r *Registry) submit(rm *room, connID string, a move.Action) (*game.State, *recordio.Record, error) {
	seat, ok := rm.seatOf(connID)
	if !ok {
		return nil, nil, ErrNotInRoom
	}
	if rm.state == nil {
		return nil, nil, ErrGameNotStarted
	}
	ns, err := game.PlayAs(rm.state, seat, a)
	if err != nil {
		log.Debug().Err(err).Str("room", rm.id).Stringer("action", a).Msg("rejected-action")
		return nil, nil, err
	}
	rm.state = ns
	rm.record.Append(a, ns)
	for _, p := range board.Players {
		r.send(rm.seats[p], Event{Type: EventGameStateUpdate, RoomID: rm.id, GameID: rm.record.ID, State: ns})
	}
	if ns.Outcome.Over() {
		log.Info().Str("room", rm.id).Stringer("outcome", ns.Outcome).Msg("game-over")
		return ns.Copy(), rm.record, nil
	}
	return ns.Copy(), nil, nil
}

// Leave removes connID. Leaving a running game forfeits it; the room is
// closed either way.
func (r *Registry) Leave(roomID, connID string) error {
	rm, err := r.lookup(roomID)
	if err != nil {
		return err
	}
	rm.mu.Lock()
	seat, ok := rm.seatOf(connID)
	if !ok {
		rm.mu.Unlock()
		return ErrNotInRoom
	}
	var finished *recordio.Record
	if rm.state != nil && !rm.state.Outcome.Over() {
		rm.state = game.Forfeit(rm.state, seat)
		rm.record.Forfeit(seat)
		finished = rm.record
	}
	rm.seats[seat] = ""
	other := rm.seats[seat.Opponent()]
	r.send(other, Event{Type: EventOpponentDisconnected, RoomID: rm.id, State: rm.state})
	rm.closed = true
	rm.mu.Unlock()

	r.drop(rm)
	log.Info().Str("room", roomID).Str("conn", connID).Msg("left-room")
	if finished != nil {
		r.store(finished)
	}
	return nil
}

// Rematch restarts a finished game, swapping sides on a coin flip.
func (r *Registry) Rematch(roomID, connID string) error {
	rm, err := r.lookup(roomID)
	if err != nil {
		return err
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if _, ok := rm.seatOf(connID); !ok {
		return ErrNotInRoom
	}
	if rm.state == nil {
		return ErrGameNotStarted
	}
	if !rm.state.Outcome.Over() {
		return ErrGameNotOver
	}
	if r.flip() {
		rm.seats[board.First], rm.seats[board.Second] = rm.seats[board.Second], rm.seats[board.First]
	}
	r.start(rm)
	return nil
}

func (r *Registry) store(rec *recordio.Record) {
	if r.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := r.archive.SaveGame(ctx, rec); err != nil {
		log.Err(err).Str("game", rec.ID).Msg("archive-failed")
	}
}
