package movegen

import "github.com/domino14/dobutsu/board"

// Attacks reports whether the piece on from could step onto target.
func Attacks(b *board.Board, from, target board.Position) bool {
	p, ok := b.Get(from)
	if !ok {
		return false
	}
	if occ, ok := b.Get(target); ok && occ.Owner == p.Owner {
		return false
	}
	for _, o := range offsets[p.Kind] {
		if step(p, from, o) == target {
			return true
		}
	}
	return false
}

// Attacked reports whether any piece owned by by attacks pos.
func Attacked(b *board.Board, pos board.Position, by board.Player) bool {
	// Every step is one square, so only the neighbours can attack.
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			from := pos.Add(dr, dc)
			p, ok := b.Get(from)
			if !ok || p.Owner != by {
				continue
			}
			if Attacks(b, from, pos) {
				return true
			}
		}
	}
	return false
}

// InCheck is true when player's Lion is attacked or no longer on the board.
func InCheck(b *board.Board, player board.Player) bool {
	lion, ok := b.Find(player, board.Lion)
	if !ok {
		return true
	}
	return Attacked(b, lion, player.Opponent())
}
