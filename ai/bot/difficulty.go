package bot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/domino14/dobutsu/evaluator"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty int

const (
	// Random plays any legal action. It is the baseline for autoplay.
	Random Difficulty = iota
	Easy
	Medium
	Hard
)

var difficultyNames = map[Difficulty]string{
	Random: "random",
	Easy:   "easy",
	Medium: "medium",
	Hard:   "hard",
}

func (d Difficulty) String() string {
	if n, ok := difficultyNames[d]; ok {
		return n
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, n := range difficultyNames {
		if n == s {
			return d, nil
		}
	}
	return Random, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if _, ok := difficultyNames[d]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDifficulty, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Preset is what a difficulty searches with. Random ignores it.
type Preset struct {
	Depth   int               `yaml:"depth"`
	Weights evaluator.Weights `yaml:"weights"`
}

// DefaultPresets grow in depth and in heuristic terms together.
func DefaultPresets() map[Difficulty]Preset {
	medium := evaluator.MaterialOnly()
	medium.Positional = true
	medium.Check = evaluator.DefaultWeights().Check
	return map[Difficulty]Preset{
		Easy:   {Depth: 1, Weights: evaluator.MaterialOnly()},
		Medium: {Depth: 3, Weights: medium},
		Hard:   {Depth: 5, Weights: evaluator.DefaultWeights()},
	}
}

// LoadPresets reads YAML such as
//
//	hard:
//	  depth: 6
//	  weights: {lion: 10000, giraffe: 55, elephant: 50, chick: 10, hen: 70, positional: true, mobility: 3, check: 20}
//
// Difficulties missing from the file keep their defaults.
func LoadPresets(r io.Reader) (map[Difficulty]Preset, error) {
	raw := map[Difficulty]Preset{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	presets := DefaultPresets()
	for d, p := range raw {
		if d == Random {
			continue
		}
		if p.Depth < 1 {
			return nil, fmt.Errorf("preset %v: depth must be at least 1, got %d", d, p.Depth)
		}
		presets[d] = p
	}
	return presets, nil
}

func LoadPresetsFile(path string) (map[Difficulty]Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadPresets(f)
}
