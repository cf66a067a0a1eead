package game

import (
	"encoding/json"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/domino14/dobutsu/board"
)

// CanonicalKey identifies a (board, hands, turn) triple, e.g.
// "gle/.c./.C./ELG - - F".
type CanonicalKey string

func PositionKey(b *board.Board, hands *[2]board.Hand, turn board.Player) CanonicalKey {
	var sb strings.Builder
	for r := 0; r < board.Rows; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(b.Rank(r))
	}
	sb.WriteByte(' ')
	sb.WriteString(hands[board.First].String())
	sb.WriteByte(' ')
	sb.WriteString(hands[board.Second].String())
	sb.WriteByte(' ')
	if turn == board.First {
		sb.WriteByte('F')
	} else {
		sb.WriteByte('S')
	}
	return CanonicalKey(sb.String())
}

func (s *State) Key() CanonicalKey {
	return PositionKey(&s.Board, &s.Hands, s.Turn)
}

// Repetitions is how often the current position has occurred.
func (s *State) Repetitions() int {
	return s.PositionHistory[s.Key()]
}

// Fingerprint hashes the whole serialized state. Two participants that
// applied the same actions get the same fingerprint.
func (s *State) Fingerprint() (uint64, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
