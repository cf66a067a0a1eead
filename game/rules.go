package game

// RepetitionLimit is how many times one position may occur before the
// game is drawn.
const RepetitionLimit = 3

// Rules holds the variant switches every participant of a game must
// agree on. The zero value is the standard rule set.
type Rules struct {
	// AllowChickDropMate permits dropping a Chick that gives immediate
	// mate. By default such a drop is illegal.
	AllowChickDropMate bool `json:"allowChickDropMate" yaml:"allow_chick_drop_mate"`
}

// DefaultRules forbids chick-drop mate.
func DefaultRules() Rules {
	return Rules{}
}
