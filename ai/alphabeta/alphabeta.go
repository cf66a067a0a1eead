// Package alphabeta picks an action by depth-limited minimax with
// alpha-beta pruning over the game rules and a weighted evaluation.
package alphabeta

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/evaluator"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if β ≤ α then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if β ≤ α then
                break (* α cut-off *)
        return value
(* Initial call *)
alphabeta(origin, depth, −∞, +∞, TRUE)
**/

const (
	// Infinity is 10 million. A decided game scores Infinity plus the
	// remaining depth, so nearer wins and later losses score better.
	Infinity = 10000000
	// bound is beyond any reachable score.
	bound = 2 * Infinity
)

var ErrNoLegalActionsForSearch = errors.New("no legal actions to search")

// Source picks the tie-break among equally scored root actions.
type Source interface {
	Intn(n int) int
}

type frandSource struct{}

func (frandSource) Intn(n int) int { return frand.Intn(n) }

// Solver is safe to reuse across searches but not to run two searches
// at once.
type Solver struct {
	depth     int
	weights   evaluator.Weights
	threads   int
	nodeLimit uint64
	rng       Source

	maximizer board.Player
	nodes     atomic.Uint64
	stopped   atomic.Bool
}

// Result is the chosen action and what the search learned.
type Result struct {
	Action move.Action
	Score  int
	// Tied lists every root action that scored Score; Action is one of them.
	Tied  []move.Action
	Nodes uint64
	// Complete is false when a node or time cap stopped the search early.
	Complete bool
}

func NewSolver(depth int, w evaluator.Weights) *Solver {
	if depth < 1 {
		depth = 1
	}
	return &Solver{depth: depth, weights: w, threads: 1, rng: frandSource{}}
}

func (s *Solver) SetThreads(threads int) {
	if threads < 1 {
		threads = 1
	}
	s.threads = threads
}

// SetNodeLimit caps the nodes visited per search. 0 means no cap.
func (s *Solver) SetNodeLimit(n uint64) {
	s.nodeLimit = n
}

func (s *Solver) SetRandomSource(r Source) {
	s.rng = r
}

func (s *Solver) Depth() int { return s.depth }

func (s *Solver) shouldStop(ctx context.Context) bool {
	if s.stopped.Load() {
		return true
	}
	if ctx.Err() != nil || (s.nodeLimit > 0 && s.nodes.Load() >= s.nodeLimit) {
		s.stopped.Store(true)
		return true
	}
	return false
}

func (s *Solver) terminal(st *game.State, depth int) int {
	if !st.Outcome.Decisive() {
		return 0
	}
	if st.Outcome.Winner == s.maximizer {
		return Infinity + depth
	}
	return -(Infinity + depth)
}

func (s *Solver) alphabeta(ctx context.Context, st *game.State, depth, α, β int, maximizing bool) int {
	s.nodes.Add(1)
	if st.Outcome.Over() {
		return s.terminal(st, depth)
	}
	if depth == 0 || s.shouldStop(ctx) {
		return evaluator.Evaluate(st, s.maximizer, s.weights)
	}
	actions := orderActions(st, game.LegalActions(st))
	if maximizing {
		value := -bound
		for _, a := range actions {
			value = max(value, s.alphabeta(ctx, game.Apply(st, a), depth-1, α, β, false))
			α = max(α, value)
			if β <= α {
				break
			}
		}
		return value
	}
	value := bound
	for _, a := range actions {
		value = min(value, s.alphabeta(ctx, game.Apply(st, a), depth-1, α, β, true))
		β = min(β, value)
		if β <= α {
			break
		}
	}
	return value
}

// orderActions puts captures first, biggest victim first. It only
// affects how much gets pruned, never the result.
func orderActions(st *game.State, actions []move.Action) []move.Action {
	victim := func(a move.Action) board.PieceKind {
		if !a.IsMove() {
			return board.NoKind
		}
		p, _ := st.Board.Get(a.To)
		return p.Kind
	}
	value := [board.NumKinds]int{board.Lion: 5, board.Hen: 4, board.Giraffe: 3, board.Elephant: 3, board.Chick: 2}
	sort.SliceStable(actions, func(i, j int) bool {
		return value[victim(actions[i])] > value[victim(actions[j])]
	})
	return actions
}

// Solve searches st for the side to move. With a context deadline or a
// node limit it may stop early; it then answers with the best root
// action among those searched to completion.
func (s *Solver) Solve(ctx context.Context, st *game.State) (*Result, error) {
	actions := game.LegalActions(st)
	if len(actions) == 0 {
		return nil, ErrNoLegalActionsForSearch
	}
	s.maximizer = st.Turn
	s.nodes.Store(0)
	s.stopped.Store(false)

	log.Debug().Int("depth", s.depth).Int("threads", s.threads).
		Int("root-actions", len(actions)).Msg("alphabeta-solve-config")
	tstart := time.Now()

	if len(actions) == 1 {
		return &Result{Action: actions[0], Tied: actions, Complete: true}, nil
	}
	actions = orderActions(st, actions)

	var scores []int
	var searched []bool
	if s.threads > 1 {
		scores, searched = s.searchParallel(ctx, st, actions)
	} else {
		scores, searched = s.searchSerial(ctx, st, actions)
	}

	best := -bound - 1
	var tied []move.Action
	for i, a := range actions {
		if !searched[i] {
			continue
		}
		switch {
		case scores[i] > best:
			best = scores[i]
			tied = append(tied[:0], a)
		case scores[i] == best:
			tied = append(tied, a)
		}
	}
	res := &Result{Complete: !s.stopped.Load(), Nodes: s.nodes.Load()}
	if len(tied) == 0 {
		// Stopped before a single root action finished.
		res.Action = actions[0]
		res.Tied = actions[:1]
		res.Score = evaluator.Evaluate(st, s.maximizer, s.weights)
	} else {
		res.Action = tied[s.rng.Intn(len(tied))]
		res.Tied = tied
		res.Score = best
	}
	log.Debug().
		Uint64("nodes", res.Nodes).
		Int("score", res.Score).
		Int("tied", len(res.Tied)).
		Str("action", res.Action.String()).
		Bool("complete", res.Complete).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	return res, nil
}

// searchSerial shares one window across root children: each child is
// searched above best-1 so an equal score is still exact.
func (s *Solver) searchSerial(ctx context.Context, st *game.State, actions []move.Action) ([]int, []bool) {
	scores := make([]int, len(actions))
	searched := make([]bool, len(actions))
	best := -bound
	for i, a := range actions {
		v := s.alphabeta(ctx, game.Apply(st, a), s.depth-1, best-1, bound, false)
		if s.stopped.Load() {
			break
		}
		scores[i], searched[i] = v, true
		best = max(best, v)
	}
	return scores, searched
}

// searchParallel gives each root child its own full window, so workers
// share nothing but the node counter.
func (s *Solver) searchParallel(ctx context.Context, st *game.State, actions []move.Action) ([]int, []bool) {
	scores := make([]int, len(actions))
	searched := make([]bool, len(actions))
	g := errgroup.Group{}
	g.SetLimit(s.threads)
	for i, a := range actions {
		g.Go(func() error {
			if s.shouldStop(ctx) {
				return nil
			}
			v := s.alphabeta(ctx, game.Apply(st, a), s.depth-1, -bound, bound, false)
			if !s.stopped.Load() {
				scores[i], searched[i] = v, true
			}
			return nil
		})
	}
	g.Wait()
	return scores, searched
}
