package game

import (
	"github.com/samber/lo"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/move"
	"github.com/domino14/dobutsu/movegen"
)

// LegalActions lists the actions available to the side to move. A
// finished game has none.
func LegalActions(s *State) []move.Action {
	if s.Outcome.Over() {
		return nil
	}
	return legalActions(&s.Board, &s.Hands, s.Turn, s.Rules, false)
}

// LegalActionsFor lists what p could do if it were p's move, ignoring the
// outcome. Evaluation uses it to measure mobility for both sides.
func LegalActionsFor(s *State, p board.Player) []move.Action {
	return legalActions(&s.Board, &s.Hands, p, s.Rules, false)
}

// HasLegalAction stops at the first legal action it finds.
func HasLegalAction(s *State) bool {
	if s.Outcome.Over() {
		return false
	}
	return hasLegalAction(&s.Board, &s.Hands, s.Turn, s.Rules)
}

// IsLegal reports whether a is currently legal for the side to move.
func IsLegal(s *State, a move.Action) bool {
	if a.Validate() != nil {
		return false
	}
	return lo.Contains(LegalActions(s), a)
}

func hasLegalAction(b *board.Board, hands *[2]board.Hand, p board.Player, rules Rules) bool {
	return len(legalActions(b, hands, p, rules, true)) > 0
}

// legalActions filters the pseudo-legal actions of p, playing each one on
// a scratch copy. With firstOnly it returns as soon as one survives.
func legalActions(b *board.Board, hands *[2]board.Hand, p board.Player, rules Rules, firstOnly bool) []move.Action {
	var legal []move.Action
	for _, a := range movegen.PseudoActions(b, &hands[p], p) {
		scratch, scratchHands := *b, *hands
		place(&scratch, &scratchHands[p], a, p)
		if movegen.InCheck(&scratch, p) {
			continue
		}
		if a.IsDrop() && a.Kind == board.Chick && !rules.AllowChickDropMate &&
			dropMates(&scratch, &scratchHands, p) {
			continue
		}
		legal = append(legal, a)
		if firstOnly {
			break
		}
	}
	return legal
}

// dropMates reports whether p's drop has left the opponent in check with
// no reply. Drops cannot interpose since nothing slides, so the replies
// checked here need no drop-mate filtering of their own.
func dropMates(b *board.Board, hands *[2]board.Hand, p board.Player) bool {
	opp := p.Opponent()
	if !movegen.InCheck(b, opp) {
		return false
	}
	return !hasLegalAction(b, hands, opp, Rules{AllowChickDropMate: true})
}

// place performs a on the board and the mover's hand: capture into hand
// with Hen demotion, Chick promotion on the far row, drop from hand.
func place(b *board.Board, hand *board.Hand, a move.Action, mover board.Player) {
	switch a.Type {
	case move.ActionTypeMove:
		p, _ := b.Get(a.From)
		if captured, ok := b.Get(a.To); ok {
			hand.Add(captured.Kind)
		}
		if p.Kind == board.Chick && a.To.Row == mover.PromotionRow() {
			p.Kind = board.Hen
		}
		b.Clear(a.From)
		b.Set(a.To, p)
	case move.ActionTypeDrop:
		hand.Remove(a.Kind)
		b.Set(a.To, board.Piece{Kind: a.Kind, Owner: mover})
	}
}
