// Package bot serves the search AI and multiplayer rooms over NATS.
package bot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/dobutsu/ai/bot"
	"github.com/domino14/dobutsu/config"
	"github.com/domino14/dobutsu/session"
)

type Service struct {
	cfg      *config.Config
	player   *aibot.Player
	registry *session.Registry
	prefix   string
}

// NewService wires a player and a room registry. registry may be nil
// for a bot-only service.
func NewService(cfg *config.Config, player *aibot.Player, registry *session.Registry) *Service {
	return &Service{
		cfg:      cfg,
		player:   player,
		registry: registry,
		prefix:   cfg.GetString(config.ConfigRoomSubjectPrefix),
	}
}

func (s *Service) handle(ctx context.Context, data []byte) *MoveResponse {
	var req MoveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("Could not parse request", err)
	}
	if req.State == nil {
		return errorResponse("Could not parse request", fmt.Errorf("missing state"))
	}
	st := req.State
	st.Rules = req.Rules
	a, err := s.player.SelectAction(ctx, st, req.Difficulty)
	if err != nil {
		return errorResponse("Could not select an action", err)
	}
	log.Info().Str("difficulty", req.Difficulty.String()).Stringer("action", a).Msg("generated-action")
	return &MoveResponse{Action: &a}
}

// handleRoom runs one room operation. Errors are also reported to the
// connection through the registry's event stream.
func (s *Service) handleRoom(subject string, data []byte) *RoomReply {
	if s.registry == nil {
		return &RoomReply{Error: "rooms are not served here"}
	}
	room, op, err := parseRoomSubject(s.prefix, subject)
	if err != nil {
		return &RoomReply{Error: err.Error()}
	}
	var msg RoomMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return &RoomReply{Error: err.Error()}
	}
	if !reToken.MatchString(msg.ConnID) {
		return &RoomReply{Error: fmt.Sprintf("bad connection id %q", msg.ConnID)}
	}
	switch op {
	case OpJoin:
		role, err := s.registry.Join(room, msg.ConnID)
		if err != nil {
			return &RoomReply{Error: err.Error()}
		}
		return &RoomReply{Role: &role}
	case OpMove:
		if msg.Action == nil {
			return &RoomReply{Error: "move without an action"}
		}
		_, err = s.registry.Submit(room, msg.ConnID, *msg.Action)
	case OpLeave:
		err = s.registry.Leave(room, msg.ConnID)
	case OpRematch:
		err = s.registry.Rematch(room, msg.ConnID)
	default:
		return &RoomReply{Error: fmt.Sprintf("unknown room operation %q", op)}
	}
	if err != nil {
		return &RoomReply{Error: err.Error()}
	}
	return &RoomReply{}
}

// natsBroadcaster publishes room events per connection.
type natsBroadcaster struct {
	nc     *nats.Conn
	prefix string
}

func (b *natsBroadcaster) Send(connID string, ev session.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.nc.Publish(EventSubject(b.prefix, ev.RoomID, connID), data)
}

// NewBroadcaster gives a session.Broadcaster that publishes on nc.
func NewBroadcaster(nc *nats.Conn, prefix string) session.Broadcaster {
	return &natsBroadcaster{nc: nc, prefix: prefix}
}

func respond(m *nats.Msg, v any) {
	if m.Reply == "" {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		// Should never happen, ideally, but we need to do something sensible here.
		m.Respond([]byte(err.Error()))
		return
	}
	if err := m.Respond(data); err != nil {
		log.Err(err).Msg("respond-failed")
	}
}

// Main serves until ctx is done. The bot answers on the bot channel;
// rooms, if the service has a registry, on <prefix>.<room>.<op>.
func Main(ctx context.Context, nc *nats.Conn, s *Service) error {
	channel := s.cfg.GetString(config.ConfigBotChannel)
	_, err := nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		respond(m, s.handle(ctx, m.Data))
	})
	if err != nil {
		return err
	}
	if s.registry != nil {
		// Room operations must be applied in arrival order, which a
		// single subscription's callback guarantees.
		_, err = nc.Subscribe(s.prefix+".*.*", func(m *nats.Msg) {
			respond(m, s.handleRoom(m.Subject, m.Data))
		})
		if err != nil {
			return err
		}
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("channel", channel).Str("rooms", s.prefix).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("draining")
	return nc.Drain()
}
