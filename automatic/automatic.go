// Package automatic plays bot-vs-bot games for comparing difficulties
// and presets.
package automatic

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	aibot "github.com/domino14/dobutsu/ai/bot"
	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/recordio"
	"github.com/domino14/dobutsu/session"
	"github.com/domino14/dobutsu/stats"
)

// DefaultMaxPlies stops a game that neither side can finish.
const DefaultMaxPlies = 400

var (
	GamesPlayed *expvar.Int
	IsPlaying   *expvar.Int

	ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")
)

func init() {
	GamesPlayed = expvar.NewInt("gamesPlayed")
	IsPlaying = expvar.NewInt("isPlaying")
}

type Contestant struct {
	Name       string
	Difficulty aibot.Difficulty
}

type Runner struct {
	player      *aibot.Player
	contestants [2]Contestant
	rules       game.Rules
	maxPlies    int
	archive     session.Archiver
}

func NewRunner(player *aibot.Player, a, b Contestant, rules game.Rules) *Runner {
	return &Runner{
		player:      player,
		contestants: [2]Contestant{a, b},
		rules:       rules,
		maxPlies:    DefaultMaxPlies,
	}
}

func (r *Runner) SetMaxPlies(n int) { r.maxPlies = n }

// SetArchiver saves every finished game.
func (r *Runner) SetArchiver(a session.Archiver) { r.archive = a }

// Summary is from the first contestant's point of view.
type Summary struct {
	Contestants [2]Contestant
	Games       int
	Wins        [2]int
	Draws       int
	Unfinished  int
	// Score counts a win as 1 and a draw as 1/2.
	Score   stats.Statistic
	Length  stats.Statistic
	lengths []float64
}

func (s *Summary) merge(o *Summary) {
	s.Games += o.Games
	s.Wins[0] += o.Wins[0]
	s.Wins[1] += o.Wins[1]
	s.Draws += o.Draws
	s.Unfinished += o.Unfinished
	s.Score.Merge(&o.Score)
	s.Length.Merge(&o.Length)
	s.lengths = append(s.lengths, o.lengths...)
}

type result struct {
	record *recordio.Record
	// winner is the contestant index, or -1.
	winner int
	plies  int
}

func (s *Summary) add(res result) {
	s.Games++
	switch {
	case res.record.Outcome.Decisive():
		s.Wins[res.winner]++
		if res.winner == 0 {
			s.Score.Push(1)
		} else {
			s.Score.Push(0)
		}
	case res.record.Outcome.Over():
		s.Draws++
		s.Score.Push(0.5)
	default:
		s.Unfinished++
		s.Score.Push(0.5)
	}
	s.Length.Push(float64(res.plies))
	s.lengths = append(s.lengths, float64(res.plies))
}

// Fprint writes the totals, a 95% interval on the first contestant's
// score, and a histogram of game lengths.
func (s *Summary) Fprint(w io.Writer) error {
	lo, hi := s.Score.Interval(95)
	_, err := fmt.Fprintf(w,
		"%d games: %s (%v) won %d, %s (%v) won %d, %d drawn, %d unfinished\n"+
			"%s score %.3f, 95%% interval [%.3f, %.3f]\n"+
			"plies per game: mean %.1f, stdev %.1f, min %.0f, max %.0f\n",
		s.Games, s.Contestants[0].Name, s.Contestants[0].Difficulty, s.Wins[0],
		s.Contestants[1].Name, s.Contestants[1].Difficulty, s.Wins[1], s.Draws, s.Unfinished,
		s.Contestants[0].Name, s.Score.Mean(), lo, hi,
		s.Length.Mean(), s.Length.Stdev(), s.Length.Min(), s.Length.Max())
	if err != nil || len(s.lengths) == 0 {
		return err
	}
	return histogram.Fprint(w, histogram.Hist(10, s.lengths), histogram.Linear(40))
}

func (r *Runner) seats(gameIdx int) [2]int {
	// Contestants alternate on First.
	if gameIdx%2 == 0 {
		return [2]int{0, 1}
	}
	return [2]int{1, 0}
}

func (r *Runner) playGame(ctx context.Context, gameIdx int, logChan chan<- string) (result, error) {
	seats := r.seats(gameIdx)
	names := [2]string{r.contestants[seats[0]].Name, r.contestants[seats[1]].Name}
	st := game.NewState(board.First, r.rules)
	rec := recordio.NewRecord(names, board.First, r.rules)

	for !st.Outcome.Over() && len(rec.Actions) < r.maxPlies {
		if err := ctx.Err(); err != nil {
			return result{}, err
		}
		c := r.contestants[seats[st.Turn]]
		a, err := r.player.SelectAction(ctx, st, c.Difficulty)
		if err != nil {
			return result{}, fmt.Errorf("game %d: %w", gameIdx, err)
		}
		ns, err := game.Play(st, a)
		if err != nil {
			return result{}, fmt.Errorf("game %d: bot played %v: %w", gameIdx, a, err)
		}
		st = ns
		rec.Append(a, st)
		if logChan != nil {
			logChan <- fmt.Sprintf("%s,%d,%d,%v,%s,%v,%s\n", rec.ID, gameIdx, len(rec.Actions),
				st.Turn.Opponent(), c.Name, a, outcomeField(st.Outcome))
		}
	}
	res := result{record: rec, winner: -1, plies: len(rec.Actions)}
	if st.Outcome.Decisive() {
		res.winner = seats[st.Outcome.Winner]
	}
	if r.archive != nil && st.Outcome.Over() {
		if err := r.archive.SaveGame(ctx, rec); err != nil {
			log.Err(err).Str("game", rec.ID).Msg("archive-failed")
		}
	}
	return res, nil
}

func outcomeField(o game.Outcome) string {
	if !o.Over() {
		return ""
	}
	return strings.ReplaceAll(o.String(), " ", "-")
}

// Play runs numGames on threads workers. Per-ply CSV goes to logfile if
// it is not nil. A cancelled ctx stops after the games in progress and
// returns what finished.
func (r *Runner) Play(ctx context.Context, numGames, threads int, logfile io.Writer) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	if threads < 1 {
		threads = 1
	}
	log.Debug().Msgf("Starting %v games, %v threads", numGames, threads)
	GamesPlayed.Set(0)

	jobs := make(chan int, 100)
	var logChan chan string
	logDone := make(chan struct{})
	if logfile != nil {
		logChan = make(chan string, 100)
		go func() {
			defer close(logDone)
			io.WriteString(logfile, "recordID,game,ply,player,contestant,action,outcome\n")
			for msg := range logChan {
				io.WriteString(logfile, msg)
			}
			log.Debug().Msg("Exiting ply logger goroutine!")
		}()
	} else {
		close(logDone)
	}

	partial := make([]Summary, threads)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for idx := range jobs {
				res, err := r.playGame(gctx, idx, logChan)
				if err != nil {
					return err
				}
				partial[i].add(res)
				GamesPlayed.Add(1)
			}
			return nil
		})
	}

	go func() {
		defer close(jobs)
		for i := 0; i < numGames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return
			}
		}
	}()

	err := g.Wait()
	if logChan != nil {
		close(logChan)
	}
	<-logDone

	sum := &Summary{Contestants: r.contestants}
	for i := range partial {
		sum.merge(&partial[i])
	}
	log.Info().Int("games", sum.Games).Int("wins0", sum.Wins[0]).Int("wins1", sum.Wins[1]).
		Int("draws", sum.Draws).Msg("autoplay-done")
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return sum, nil
	}
	return sum, err
}
