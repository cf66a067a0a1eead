package board

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes rows of squares, null for an empty square.
func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, Rows)
	for r := 0; r < Rows; r++ {
		rows[r] = make([]*Piece, Cols)
		for c := 0; c < Cols; c++ {
			if !b[r][c].Empty() {
				p := b[r][c]
				rows[r][c] = &p
			}
		}
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != Rows {
		return fmt.Errorf("board must have %d rows, got %d", Rows, len(rows))
	}
	var nb Board
	for r, row := range rows {
		if len(row) != Cols {
			return fmt.Errorf("board row %d must have %d squares, got %d", r, Cols, len(row))
		}
		for c, p := range row {
			if p == nil {
				continue
			}
			if !p.Kind.Valid() {
				return fmt.Errorf("%w at row %d col %d", ErrUnknownPieceKind, r, c)
			}
			nb[r][c] = *p
		}
	}
	*b = nb
	return nil
}
