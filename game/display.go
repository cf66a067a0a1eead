package game

import (
	"fmt"
	"strings"

	"github.com/domino14/dobutsu/board"
)

func handText(h *board.Hand) string {
	if h.Total() == 0 {
		return "none"
	}
	ks := h.List()
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

// ToDisplayText renders the state for the shell.
func (s *State) ToDisplayText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Second hand: %s\n\n", handText(&s.Hands[board.Second]))
	sb.WriteString(s.Board.ToDisplayText())
	fmt.Fprintf(&sb, "\nFirst hand: %s\n", handText(&s.Hands[board.First]))
	fmt.Fprintf(&sb, "Move %d, %v to play", s.PlyCount, s.Turn)
	if s.IsCheck {
		sb.WriteString(" (in check)")
	}
	sb.WriteString("\n")
	if s.LastAction != nil {
		fmt.Fprintf(&sb, "Last action: %v\n", *s.LastAction)
	}
	if s.Outcome.Over() {
		fmt.Fprintf(&sb, "Game over: %v\n", s.Outcome)
	}
	return sb.String()
}
