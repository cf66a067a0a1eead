package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	aibot "github.com/domino14/dobutsu/ai/bot"
	"github.com/domino14/dobutsu/ai/gemini"
	"github.com/domino14/dobutsu/automatic"
	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/config"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/recordio"
	"github.com/domino14/dobutsu/store"
)

type Response struct {
	message string
}

type CmdOptions map[string]string

func (c CmdOptions) String(key string) string {
	return c[key]
}

func (c CmdOptions) Int(key string) (int, error) {
	v, ok := c[key]
	if !ok {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v, ok := c[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) Bool(key string) bool {
	return strings.ToLower(c[key]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) playing() (*game.State, error) {
	st := sc.current()
	if st == nil {
		return nil, errNoGame
	}
	if st.Outcome.Over() {
		return nil, errGameOver
	}
	return st, nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	starter := board.First
	if len(cmd.args) > 0 {
		p, err := board.ParsePlayer(cmd.args[0])
		if err != nil {
			return nil, err
		}
		starter = p
	}
	names := [2]string{"first", "second"}
	if n := cmd.options.String("first"); n != "" {
		names[0] = n
	}
	if n := cmd.options.String("second"); n != "" {
		names[1] = n
	}
	st := game.NewState(starter, sc.rules)
	sc.setGame([]*game.State{st}, recordio.NewRecord(names, starter, sc.rules))
	log.Debug().Str("id", sc.record.ID).Msg("new-game")
	return msg(st.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	st := sc.current()
	if st == nil {
		return nil, errNoGame
	}
	return msg(fmt.Sprintf("%s\n[game %s, %s vs %s, ply %d]", st.ToDisplayText(), sc.record.ID,
		sc.record.Players[0], sc.record.Players[1], len(sc.record.Actions))), nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	st, err := sc.playing()
	if err != nil {
		return nil, err
	}
	actions := game.LegalActions(st)
	names := lo.Map(actions, func(a move.Action, _ int) string { return a.String() })
	// Sorting by notation keeps #n stable between runs.
	sort.Sort(byName{actions, names})
	sc.curActions = actions

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d legal actions for %v:\n", len(actions), st.Turn)
	for i, n := range names {
		fmt.Fprintf(&sb, "%3d: %s\n", i+1, n)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

type byName struct {
	actions []move.Action
	names   []string
}

func (b byName) Len() int           { return len(b.actions) }
func (b byName) Less(i, j int) bool { return b.names[i] < b.names[j] }
func (b byName) Swap(i, j int) {
	b.actions[i], b.actions[j] = b.actions[j], b.actions[i]
	b.names[i], b.names[j] = b.names[j], b.names[i]
}

// parseAction accepts shell notation or #n from the last `moves`.
func (sc *ShellController) parseAction(s string) (move.Action, error) {
	if strings.HasPrefix(s, "#") {
		idx, err := strconv.Atoi(s[1:])
		if err != nil {
			return move.Action{}, err
		}
		if idx < 1 || idx > len(sc.curActions) {
			return move.Action{}, errors.New("action outside range; run `moves` first")
		}
		return sc.curActions[idx-1], nil
	}
	return move.Parse(s)
}

func (sc *ShellController) apply(st *game.State, a move.Action) (*Response, error) {
	ns, err := game.Play(st, a)
	if err != nil {
		return nil, err
	}
	sc.push(a, ns)
	return msg(ns.ToDisplayText()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <action>, e.g. play b2-b3 or play C*a2")
	}
	st, err := sc.playing()
	if err != nil {
		return nil, err
	}
	a, err := sc.parseAction(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return sc.apply(st, a)
}

func (sc *ShellController) difficultyArg(cmd *shellcmd) (aibot.Difficulty, error) {
	if len(cmd.args) == 0 {
		return sc.difficulty, nil
	}
	return aibot.ParseDifficulty(cmd.args[0])
}

func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	st, err := sc.playing()
	if err != nil {
		return nil, err
	}
	d, err := sc.difficultyArg(cmd)
	if err != nil {
		return nil, err
	}
	a, err := sc.player.SelectAction(sc.ctx, st, d)
	if err != nil {
		return nil, err
	}
	resp, err := sc.apply(st, a)
	if err != nil {
		return nil, fmt.Errorf("bot chose %v: %w", a, err)
	}
	resp.message = fmt.Sprintf("%s (%v) plays %v\n\n%s", st.Turn, d, a, resp.message)
	return resp, nil
}

// hint asks Gemini when a key is configured and falls back to the search.
// The suggested action is not played.
func (sc *ShellController) hint(cmd *shellcmd) (*Response, error) {
	st, err := sc.playing()
	if err != nil {
		return nil, err
	}
	if sc.advisor == nil && sc.config.GetString(config.ConfigGeminiAPIKey) != "" {
		adv, err := gemini.NewAdvisor(sc.ctx, sc.config)
		if err != nil {
			log.Err(err).Msg("gemini-advisor-unavailable")
		} else {
			sc.advisor = adv
		}
	}
	if sc.advisor != nil {
		a, err := sc.advisor.Suggest(sc.ctx, st)
		if err == nil {
			return msg(fmt.Sprintf("hint (gemini): %v", a)), nil
		}
		log.Err(err).Msg("gemini-hint-failed; falling back to search")
	}
	d, err := sc.difficultyArg(cmd)
	if err != nil {
		return nil, err
	}
	a, err := sc.player.SelectAction(sc.ctx, st, d)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("hint (%v): %v", d, a)), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if len(sc.states) < 2 {
		return nil, errors.New("nothing to undo")
	}
	sc.states = sc.states[:len(sc.states)-1]
	st := sc.current()
	// A forfeit adds a state without an action.
	if len(sc.record.Actions) > len(sc.states)-1 {
		sc.record.Actions = sc.record.Actions[:len(sc.states)-1]
	}
	sc.record.Outcome = st.Outcome
	sc.record.Termination = recordio.TerminationNone
	if st.Outcome.Over() {
		sc.record.Termination = recordio.TerminationNormal
	}
	sc.curActions = nil
	return msg(st.ToDisplayText()), nil
}

func (sc *ShellController) resign(cmd *shellcmd) (*Response, error) {
	st, err := sc.playing()
	if err != nil {
		return nil, err
	}
	ns := game.Forfeit(st, st.Turn)
	sc.states = append(sc.states, ns)
	sc.record.Forfeit(st.Turn)
	return msg(fmt.Sprintf("%v resigns. %v", st.Turn, ns.Outcome)), nil
}

func (sc *ShellController) settings() string {
	allow := "forbid"
	if sc.rules.AllowChickDropMate {
		allow = "allow"
	}
	return fmt.Sprintf("difficulty: %v\nchick-drop-mate: %s", sc.difficulty, allow)
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.settings()), nil
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: set <key> <value>")
	}
	key, value := cmd.args[0], cmd.args[1]
	switch key {
	case "difficulty":
		d, err := aibot.ParseDifficulty(value)
		if err != nil {
			return nil, err
		}
		sc.difficulty = d
		return msg("set difficulty to " + d.String()), nil
	case "chick-drop-mate":
		switch value {
		case "allow", "true":
			sc.rules.AllowChickDropMate = true
		case "forbid", "false":
			sc.rules.AllowChickDropMate = false
		default:
			return nil, fmt.Errorf("chick-drop-mate is allow or forbid, not %q", value)
		}
		return msg("set chick-drop-mate to " + value + "; it applies from the next `new`"), nil
	}
	return nil, fmt.Errorf("unknown setting %q", key)
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	numGames := 100
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		numGames = n
	}
	threads, err := cmd.options.IntDefault("threads", 1)
	if err != nil {
		return nil, err
	}
	var contestants [2]automatic.Contestant
	for i, key := range []string{"first", "second"} {
		d := sc.difficulty
		if v := cmd.options.String(key); v != "" {
			d, err = aibot.ParseDifficulty(v)
			if err != nil {
				return nil, err
			}
		}
		contestants[i] = automatic.Contestant{Name: fmt.Sprintf("%s-%v", key, d), Difficulty: d}
	}
	r := automatic.NewRunner(sc.player, contestants[0], contestants[1], sc.rules)
	if maxPlies, err := cmd.options.IntDefault("maxplies", 0); err != nil {
		return nil, err
	} else if maxPlies > 0 {
		r.SetMaxPlies(maxPlies)
	}
	if cmd.options.Bool("save") {
		db, err := sc.db()
		if err != nil {
			return nil, err
		}
		r.SetArchiver(db)
	}

	var logfile io.Writer
	if fn := cmd.options.String("file"); fn != "" {
		f, err := os.Create(fn)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		logfile = f
	}
	sum, err := r.Play(sc.ctx, numGames, threads, logfile)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := sum.Fprint(&sb); err != nil {
		return nil, err
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) db() (*store.Store, error) {
	if sc.archive != nil {
		return sc.archive, nil
	}
	db, err := store.Open(sc.config.GetString(config.ConfigDBPath))
	if err != nil {
		return nil, err
	}
	sc.archive = db
	return db, nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if sc.record == nil {
		return nil, errNoGame
	}
	db, err := sc.db()
	if err != nil {
		return nil, err
	}
	if err := db.SaveGame(sc.ctx, sc.record); err != nil {
		return nil, err
	}
	return msg("saved game " + sc.record.ID), nil
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("please provide a filename to save to")
	}
	if sc.record == nil {
		return nil, errNoGame
	}
	filename := cmd.args[0]
	if err := recordio.SaveFile(filename, sc.record); err != nil {
		return nil, err
	}
	return msg("record written to " + filename), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	var rec *recordio.Record
	var err error
	switch {
	case cmd.options.String("id") != "":
		db, err := sc.db()
		if err != nil {
			return nil, err
		}
		rec, err = db.GetGame(sc.ctx, cmd.options.String("id"))
		if err != nil {
			return nil, err
		}
	case len(cmd.args) > 0:
		rec, err = recordio.LoadFile(cmd.args[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("usage: load <file> or load -id <game id>")
	}
	states, err := recordio.Replay(rec)
	if err != nil {
		return nil, err
	}
	sc.setGame(states, rec)
	sc.rules = rec.Rules
	return sc.show(cmd)
}

func (sc *ShellController) list(cmd *shellcmd) (*Response, error) {
	limit, err := cmd.options.IntDefault("n", 10)
	if err != nil {
		return nil, err
	}
	db, err := sc.db()
	if err != nil {
		return nil, err
	}
	recs, err := db.ListGames(sc.ctx, limit)
	if err != nil {
		return nil, err
	}
	tally, err := db.Tally(sc.ctx)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, r := range recs {
		outcome := "unfinished"
		if r.Outcome.Over() {
			outcome = r.Outcome.String()
		}
		fmt.Fprintf(&sb, "%s  %s  %s vs %s  %d plies  %s\n", r.ID,
			r.Created.Local().Format("2006-01-02 15:04"), r.Players[0], r.Players[1],
			len(r.Actions), outcome)
	}
	fmt.Fprintf(&sb, "First won %d, Second won %d, %d drawn",
		tally[game.Win(board.First)], tally[game.Win(board.Second)], tally[game.Draw()])
	return msg(sb.String()), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
