package game

import (
	"encoding/json"
	"fmt"

	"github.com/domino14/dobutsu/board"
)

// UnmarshalJSON decodes a state and checks the one board invariant a
// peer could break: at most one Lion per side.
func (s *State) UnmarshalJSON(data []byte) error {
	type plain State
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Turn > board.Second {
		return fmt.Errorf("%w: turn %d", board.ErrUnknownPlayer, p.Turn)
	}
	var lions [2]int
	for r := 0; r < board.Rows; r++ {
		for c := 0; c < board.Cols; c++ {
			if pc := p.Board[r][c]; pc.Kind == board.Lion {
				lions[pc.Owner]++
			}
		}
	}
	if lions[board.First] > 1 || lions[board.Second] > 1 {
		return fmt.Errorf("state has more than one Lion for a side")
	}
	if p.PositionHistory == nil {
		p.PositionHistory = map[CanonicalKey]int{}
	}
	rules := s.Rules
	*s = State(p)
	s.Rules = rules
	return nil
}
