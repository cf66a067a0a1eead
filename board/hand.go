package board

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Hand is a player's pool of captured pieces, counted per kind. Only
// droppable kinds are ever stored. Like Board it copies by assignment.
type Hand [NumKinds]uint8

// Add puts a captured piece into the hand, demoting a Hen. A Lion is ignored;
// its capture ends the game.
func (h *Hand) Add(k PieceKind) {
	k = k.Demote()
	if !k.Droppable() {
		return
	}
	h[k]++
}

// Remove takes one piece of kind k out of the hand. It reports false if
// none was held.
func (h *Hand) Remove(k PieceKind) bool {
	if !k.Droppable() || h[k] == 0 {
		return false
	}
	h[k]--
	return true
}

func (h *Hand) Count(k PieceKind) int {
	if int(k) >= NumKinds {
		return 0
	}
	return int(h[k])
}

func (h *Hand) Has(k PieceKind) bool {
	return h.Count(k) > 0
}

func (h *Hand) Total() int {
	n := 0
	for _, c := range h {
		n += int(c)
	}
	return n
}

// Kinds returns the distinct held kinds in fixed order.
func (h *Hand) Kinds() []PieceKind {
	var ks []PieceKind
	for _, k := range PieceKinds {
		if h.Has(k) {
			ks = append(ks, k)
		}
	}
	return ks
}

// List expands the hand into a multiset slice.
func (h *Hand) List() []PieceKind {
	ks := make([]PieceKind, 0, h.Total())
	for _, k := range PieceKinds {
		for i := 0; i < h.Count(k); i++ {
			ks = append(ks, k)
		}
	}
	return ks
}

// String is a compact form like "C2E1", used in canonical keys. An empty
// hand is "-".
func (h Hand) String() string {
	var sb strings.Builder
	for _, k := range PieceKinds {
		if c := h.Count(k); c > 0 {
			fmt.Fprintf(&sb, "%c%d", k.Letter(), c)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// MarshalJSON writes the hand as a list of kinds, e.g. ["Chick","Chick"].
func (h Hand) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.List())
}

func (h *Hand) UnmarshalJSON(data []byte) error {
	var ks []PieceKind
	if err := json.Unmarshal(data, &ks); err != nil {
		return err
	}
	var nh Hand
	for _, k := range ks {
		if !k.Droppable() {
			return fmt.Errorf("%w: %s cannot be held", ErrUnknownPieceKind, k)
		}
		nh[k]++
	}
	*h = nh
	return nil
}
