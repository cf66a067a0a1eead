package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/dobutsu/ai/bot"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

// requester is the part of *nats.Conn the client uses.
type requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

type Client struct {
	nc       requester
	channel  string
	timeout  time.Duration
	attempts uint
}

func NewClient(nc *nats.Conn, channel string) *Client {
	return &Client{nc: nc, channel: channel, timeout: 10 * time.Second, attempts: 3}
}

func (c *Client) SetTimeout(d time.Duration) { c.timeout = d }

func (c *Client) SetAttempts(n uint) { c.attempts = n }

func decodeResponse(data []byte) (move.Action, error) {
	var resp MoveResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return move.Action{}, err
	}
	if resp.Error != "" {
		return move.Action{}, fmt.Errorf("%w: %s", ErrBotError, resp.Error)
	}
	if resp.Action == nil {
		return move.Action{}, errors.New("should never happen")
	}
	return *resp.Action, nil
}

// RequestMove sends a state to the bot and gets an action back. Timeouts
// and transport failures are retried with backoff; an error reported by
// the bot is not.
func (c *Client) RequestMove(ctx context.Context, st *game.State, d aibot.Difficulty) (move.Action, error) {
	data, err := json.Marshal(MoveRequest{State: st, Rules: st.Rules, Difficulty: d})
	if err != nil {
		return move.Action{}, err
	}
	var action move.Action
	err = retry.Do(
		func() error {
			rctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			res, err := c.nc.RequestWithContext(rctx, c.channel, data)
			if err != nil {
				return err
			}
			log.Debug().Msgf("res: %v", string(res.Data))
			a, err := decodeResponse(res.Data)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			action = a
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("bot-request-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return move.Action{}, err
	}
	return action, nil
}
