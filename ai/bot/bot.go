// Package bot turns a difficulty into an action for the side to move.
package bot

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/dobutsu/ai/alphabeta"
	"github.com/domino14/dobutsu/config"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

// Source is where Random and the search tie-break get their numbers.
type Source = alphabeta.Source

type frandSource struct{}

func (frandSource) Intn(n int) int { return frand.Intn(n) }

// Player is safe for concurrent use; every selection gets its own
// solver.
type Player struct {
	presets   map[Difficulty]Preset
	threads   int
	nodeLimit uint64
	timeLimit time.Duration
	rng       Source
}

// Selection is what SelectActionAsync delivers.
type Selection struct {
	Action move.Action
	Err    error
}

// NewPlayer reads search limits and the optional presets file from cfg.
// A nil cfg gives the default presets with no limits.
func NewPlayer(cfg *config.Config) (*Player, error) {
	p := &Player{presets: DefaultPresets(), threads: 1, rng: frandSource{}}
	if cfg == nil {
		return p, nil
	}
	if f := cfg.GetString(config.ConfigDifficultyPresets); f != "" {
		presets, err := LoadPresetsFile(f)
		if err != nil {
			return nil, err
		}
		p.presets = presets
	}
	p.threads = max(1, cfg.GetInt(config.ConfigSearchThreads))
	p.nodeLimit = cfg.GetUint64(config.ConfigSearchNodeLimit)
	p.timeLimit = cfg.GetDuration(config.ConfigSearchTimeLimit)
	return p, nil
}

func (p *Player) SetRandomSource(r Source) {
	p.rng = r
}

func (p *Player) SetPreset(d Difficulty, preset Preset) {
	p.presets[d] = preset
}

func (p *Player) Preset(d Difficulty) (Preset, bool) {
	preset, ok := p.presets[d]
	return preset, ok
}

// SelectAction blocks for the length of the search.
func (p *Player) SelectAction(ctx context.Context, st *game.State, d Difficulty) (move.Action, error) {
	if d == Random {
		actions := game.LegalActions(st)
		if len(actions) == 0 {
			return move.Action{}, alphabeta.ErrNoLegalActionsForSearch
		}
		return actions[p.rng.Intn(len(actions))], nil
	}
	preset, ok := p.presets[d]
	if !ok {
		return move.Action{}, ErrUnknownDifficulty
	}
	if p.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeLimit)
		defer cancel()
	}
	solver := alphabeta.NewSolver(preset.Depth, preset.Weights)
	solver.SetThreads(p.threads)
	solver.SetNodeLimit(p.nodeLimit)
	solver.SetRandomSource(p.rng)
	res, err := solver.Solve(ctx, st)
	if err != nil {
		return move.Action{}, err
	}
	if !res.Complete {
		log.Info().Str("difficulty", d.String()).Uint64("nodes", res.Nodes).
			Msg("search-stopped-early")
	}
	return res.Action, nil
}

// SelectActionAsync runs the search on its own goroutine. The channel
// receives exactly one Selection and is then closed.
func (p *Player) SelectActionAsync(ctx context.Context, st *game.State, d Difficulty) <-chan Selection {
	ch := make(chan Selection, 1)
	go func() {
		defer close(ch)
		a, err := p.SelectAction(ctx, st, d)
		ch <- Selection{Action: a, Err: err}
	}()
	return ch
}
