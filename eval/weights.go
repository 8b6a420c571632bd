package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WinScore is the terminal score of a won position. It dominates any
// heuristic sum a non-terminal position can reach, which is also what
// makes it the sound per-outcome bound for the search's optimistic
// pruning.
const WinScore = 1_000_000.0

// Weights are the tunable coefficients of the static evaluation. The
// structural terms only apply to contact positions; once the position is
// a pure race the race terms take over entirely.
type Weights struct {
	// race detection
	RaceHomeMin int `yaml:"race_home_min"`
	RacePipGap  int `yaml:"race_pip_gap"`

	// race scoring
	RacePip      float64 `yaml:"race_pip"`
	RaceBorneOff float64 `yaml:"race_borne_off"`

	// contact scoring
	ContactPip    float64 `yaml:"contact_pip"`
	Bar           float64 `yaml:"bar"`
	Blot          float64 `yaml:"blot"`
	HomeBlotScale float64 `yaml:"home_blot_scale"`
	Prime         float64 `yaml:"prime"`
	Anchor        float64 `yaml:"anchor"`
	BorneOff      float64 `yaml:"borne_off"`
}

// DefaultWeights returns the stock tuning.
func DefaultWeights() Weights {
	return Weights{
		RaceHomeMin:   12,
		RacePipGap:    35,
		RacePip:       1.0,
		RaceBorneOff:  8.0,
		ContactPip:    0.25,
		Bar:           16.0,
		Blot:          4.0,
		HomeBlotScale: 2.0,
		Prime:         3.0,
		Anchor:        5.0,
		BorneOff:      10.0,
	}
}

// LoadWeights reads a YAML weights file. Fields missing from the file
// keep their default values, so a file can override just one knob.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	data, err := os.ReadFile(path)
	if err != nil {
		return w, err
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parsing weights %s: %w", path, err)
	}
	return w, nil
}

// Save writes the weights as YAML.
func (w Weights) Save(path string) error {
	data, err := yaml.Marshal(w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
