package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/dobutsu/game"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var difficulties = []string{"random", "easy", "medium", "hard"}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Options: []string{"-first", "-second"},
		Args:    []string{"first", "second"},
	},
	"ai":   {Args: difficulties},
	"hint": {Args: difficulties},
	"autoplay": {
		Options: []string{"-first", "-second", "-threads", "-file", "-maxplies", "-save"},
	},
	"set": {
		Args: []string{"difficulty", "chick-drop-mate"},
	},
	"load": {Options: []string{"-id"}},
	"list": {Options: []string{"-n"}},
	"help": {
		Args: []string{"play", "ai", "autoplay", "set", "load", "script"},
	},
}

var commandNames = []string{
	"help", "new", "show", "moves", "play", "ai", "hint", "undo", "resign",
	"set", "autoplay", "save", "export", "load", "list", "script", "version", "exit",
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch lastCompleteField {
		case "-first", "-second":
			if cmdName == "autoplay" {
				completions = difficulties
			}
		case "-save":
			completions = []string{"true", "false"}
		case "difficulty":
			completions = difficulties
		case "chick-drop-mate":
			completions = []string{"allow", "forbid"}
		}

		// Legal actions for play, from the current position.
		if cmdName == "play" && completions == nil {
			if st := c.sc.current(); st != nil && !st.Outcome.Over() {
				for _, a := range game.LegalActions(st) {
					completions = append(completions, a.String())
				}
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// Return only the part that needs to be added
			suffix := completion[len(prefix):]
			matches = append(matches, []rune(suffix))
		}
	}

	return matches, len(prefix)
}
