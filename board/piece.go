package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrUnknownPieceKind = errors.New("unknown piece kind")
)

// Player is one of the two sides. First moves toward row 0, Second
// toward row 3.
type Player uint8

const (
	First Player = iota
	Second
)

// Players lists both sides in turn order.
var Players = [2]Player{First, Second}

func (p Player) Opponent() Player {
	return 1 - p
}

// Forward is the row delta of a step toward the opponent.
func (p Player) Forward() int {
	if p == First {
		return -1
	}
	return 1
}

// PromotionRow is the far rank for p, which is the opponent's back rank.
// Chicks promote here and a Lion standing here safely wins.
func (p Player) PromotionRow() int {
	if p == First {
		return 0
	}
	return Rows - 1
}

// BackRow is the rank p starts on.
func (p Player) BackRow() int {
	return p.Opponent().PromotionRow()
}

func (p Player) String() string {
	switch p {
	case First:
		return "First"
	case Second:
		return "Second"
	}
	return fmt.Sprintf("Player(%d)", p)
}

func (p Player) MarshalText() ([]byte, error) {
	if p > Second {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, p)
	}
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(text []byte) error {
	v, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePlayer accepts the wire names as well as a few shell-friendly aliases.
func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(s) {
	case "first", "sente", "1":
		return First, nil
	case "second", "gote", "2":
		return Second, nil
	}
	return First, fmt.Errorf("%w: %q", ErrUnknownPlayer, s)
}

// PieceKind is the animal on a square. The zero value is used for an
// empty square and never appears in a hand.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Lion
	Giraffe
	Elephant
	Chick
	Hen
)

const NumKinds = 6

// PieceKinds lists the real kinds in a fixed order.
var PieceKinds = []PieceKind{Lion, Giraffe, Elephant, Chick, Hen}

var kindNames = [NumKinds]string{"", "Lion", "Giraffe", "Elephant", "Chick", "Hen"}
var kindLetters = [NumKinds]byte{'.', 'L', 'G', 'E', 'C', 'H'}

func (k PieceKind) String() string {
	if int(k) < NumKinds && k != NoKind {
		return kindNames[k]
	}
	return fmt.Sprintf("PieceKind(%d)", k)
}

// Letter is the one-letter uppercase abbreviation of k.
func (k PieceKind) Letter() byte {
	if int(k) < NumKinds {
		return kindLetters[k]
	}
	return '?'
}

// Valid reports whether k names a real animal.
func (k PieceKind) Valid() bool {
	return k >= Lion && k <= Hen
}

// Droppable reports whether a piece of this kind can sit in a hand.
func (k PieceKind) Droppable() bool {
	return k == Giraffe || k == Elephant || k == Chick
}

// Demote returns the kind a captured piece takes in its captor's hand.
func (k PieceKind) Demote() PieceKind {
	if k == Hen {
		return Chick
	}
	return k
}

func (k PieceKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPieceKind, k)
	}
	return []byte(k.String()), nil
}

func (k *PieceKind) UnmarshalText(text []byte) error {
	v, err := ParsePieceKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParsePieceKind accepts either the full name or the letter, case-insensitively.
func ParsePieceKind(s string) (PieceKind, error) {
	for _, k := range PieceKinds {
		if strings.EqualFold(s, k.String()) || (len(s) == 1 && strings.ToUpper(s)[0] == k.Letter()) {
			return k, nil
		}
	}
	return NoKind, fmt.Errorf("%w: %q", ErrUnknownPieceKind, s)
}

// Piece is an animal and its current owner. The zero Piece is an empty square.
type Piece struct {
	Kind  PieceKind `json:"kind"`
	Owner Player    `json:"owner"`
}

func (p Piece) Empty() bool {
	return p.Kind == NoKind
}

// Letter renders First pieces uppercase and Second pieces lowercase.
func (p Piece) Letter() byte {
	l := p.Kind.Letter()
	if p.Owner == Second && p.Kind != NoKind {
		l += 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	if p.Empty() {
		return "empty"
	}
	return p.Owner.String() + " " + p.Kind.String()
}
