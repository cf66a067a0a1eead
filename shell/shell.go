package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/dobutsu/ai/bot"
	"github.com/domino14/dobutsu/ai/gemini"
	"github.com/domino14/dobutsu/config"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/recordio"
	"github.com/domino14/dobutsu/store"
)

var (
	errNoData            = errors.New("no data in line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("please start a game first with the `new` or `load` command")
	errGameOver          = errors.New("the game is over; `undo`, `new` or `load` to continue")
)

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	config     *config.Config
	gitVersion string

	rules  game.Rules
	states []*game.State
	record *recordio.Record
	// curActions is the last list shown by `moves`, for `play #n`.
	curActions []move.Action

	player     *aibot.Player
	difficulty aibot.Difficulty
	advisor    *gemini.Advisor
	archive    *store.Store

	ctx    context.Context
	cancel context.CancelFunc
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func newController(cfg *config.Config, gitVersion string) (*ShellController, error) {
	player, err := aibot.NewPlayer(cfg)
	if err != nil {
		return nil, err
	}
	d, err := aibot.ParseDifficulty(cfg.GetString(config.ConfigDefaultDifficulty))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ShellController{
		out:        os.Stderr,
		config:     cfg,
		gitVersion: gitVersion,
		rules:      cfg.Rules(),
		player:     player,
		difficulty: d,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

func NewShellController(cfg *config.Config, gitVersion string) *ShellController {
	sc, err := newController(cfg, gitVersion)
	if err != nil {
		panic(err)
	}
	prompt := "dobutsu>"
	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "/tmp/dobutsu_readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// current is the state on the board, or nil with no game loaded.
func (sc *ShellController) current() *game.State {
	if len(sc.states) == 0 {
		return nil
	}
	return sc.states[len(sc.states)-1]
}

func (sc *ShellController) setGame(states []*game.State, rec *recordio.Record) {
	sc.states = states
	sc.record = rec
	sc.curActions = nil
}

// push makes ns the current state after a.
func (sc *ShellController) push(a move.Action, ns *game.State) {
	sc.states = append(sc.states, ns)
	sc.record.Append(a, ns)
	sc.curActions = nil
}

// extractFields splits a line into the command, its positional args and
// its -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") && len(fields[idx]) > 1 {
			// option
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	return sc.dispatch(cmd, sig)
}

func (sc *ShellController) dispatch(cmd *shellcmd, sig chan os.Signal) (*Response, error) {
	switch cmd.cmd {
	case "exit", "bye":
		if sig != nil {
			sig <- syscall.SIGINT
		}
		return nil, errors.New("sending quit signal")
	case "help":
		return sc.help(cmd)
	case "version":
		return msg(sc.gitVersion), nil
	case "new":
		return sc.newGame(cmd)
	case "load":
		return sc.load(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "moves":
		return sc.moves(cmd)
	case "play":
		return sc.play(cmd)
	case "ai":
		return sc.aiplay(cmd)
	case "hint":
		return sc.hint(cmd)
	case "undo":
		return sc.undo(cmd)
	case "resign":
		return sc.resign(cmd)
	case "set":
		return sc.set(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "save":
		return sc.save(cmd)
	case "export":
		return sc.export(cmd)
	case "list":
		return sc.list(cmd)
	case "script":
		return sc.script(cmd)
	default:
		log.Debug().Msgf("you said: %v %v", cmd.cmd, cmd.args)
		return nil, fmt.Errorf("unrecognized command %q; try `help`", cmd.cmd)
	}
}

// Execute runs a single command line, as given on the command line of
// the binary.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "bye" {
			sig <- syscall.SIGINT
			break
		}
		sc.Execute(sig, line)
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops anything still searching and closes the archive.
func (sc *ShellController) Cleanup() {
	sc.cancel()
	if sc.archive != nil {
		if err := sc.archive.Close(); err != nil {
			log.Err(err).Msg("closing-archive")
		}
	}
}
