package board

import (
	"fmt"
	"strings"
)

// ToDisplayText draws the board from First's side, with Second's pieces
// in lowercase.
//
//	   a b c
//	4  g l e
//	3  . c .
//	2  . C .
//	1  E L G
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < Cols; c++ {
		fmt.Fprintf(&sb, "%c ", 'a'+c)
	}
	sb.WriteString("\n")
	for r := 0; r < Rows; r++ {
		fmt.Fprintf(&sb, "%d  ", Rows-r)
		for c := 0; c < Cols; c++ {
			sb.WriteByte(b[r][c].Letter())
			if c < Cols-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Rank returns row r as letters, "." for empty squares.
func (b *Board) Rank(r int) string {
	var sb strings.Builder
	for c := 0; c < Cols; c++ {
		sb.WriteByte(b[r][c].Letter())
	}
	return sb.String()
}
