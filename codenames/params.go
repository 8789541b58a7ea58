package codenames

import (
	"fmt"
	"math"
)

// ScoreConfig is the raw, unvalidated form of ScoreParams, usually read from a
// config file or a request. Map keys are team names, see Team.String.
type ScoreConfig struct {
	Weights map[string]float64 `yaml:"weights" json:"weights"`
	Decays  map[string]float64 `yaml:"decays" json:"decays"`
	// CounterStart is the value each team's occurrence counter starts at.
	CounterStart int `yaml:"counter_start" json:"counter_start"`
	// DecayAssassin applies the assassin decay to the assassin penalty. When
	// it's set, decays must also contain "assassin".
	DecayAssassin bool `yaml:"decay_assassin" json:"decay_assassin"`
}

// ScoreParams holds validated weights and decays for scoring clues. The zero
// value isn't usable, build one with NewScoreParams.
type ScoreParams struct {
	weights       map[Team]float64
	decays        map[Team]float64
	counterStart  int
	decayAssassin bool
}

// NewScoreParams validates cfg. Every team needs a weight, and every team but
// the assassin needs a decay.
func NewScoreParams(cfg ScoreConfig) (*ScoreParams, error) {
	sp := &ScoreParams{
		weights:       make(map[Team]float64),
		decays:        make(map[Team]float64),
		counterStart:  cfg.CounterStart,
		decayAssassin: cfg.DecayAssassin,
	}
	if cfg.CounterStart < 0 {
		return nil, &ConfigError{Key: "counter_start", Reason: fmt.Sprintf("must be non-negative, got %d", cfg.CounterStart)}
	}

	for _, t := range Teams {
		w, err := lookup(cfg.Weights, "weights", t.String(), nonNegative)
		if err != nil {
			return nil, err
		}
		sp.weights[t] = w

		if t == Assassin && !cfg.DecayAssassin {
			sp.decays[t] = 1
			continue
		}
		d, err := lookup(cfg.Decays, "decays", t.String(), unitInterval)
		if err != nil {
			return nil, err
		}
		sp.decays[t] = d
	}

	return sp, nil
}

// Weight returns the weight for the given team.
func (sp *ScoreParams) Weight(t Team) float64 { return sp.weights[t] }

// Decay returns the decay factor for the given team.
func (sp *ScoreParams) Decay(t Team) float64 { return sp.decays[t] }

// CounterStart returns the starting value of the per-team occurrence counters.
func (sp *ScoreParams) CounterStart() int { return sp.counterStart }

// DecayAssassin reports whether the assassin penalty is decayed.
func (sp *ScoreParams) DecayAssassin() bool { return sp.decayAssassin }

// Category is something the opponent can do on its turn: pick a picture of a
// given color, or stop.
type Category int

const (
	// PickOpponent picks one of the opponent's own pictures.
	PickOpponent Category = iota
	// PickOwn picks one of the player's pictures.
	PickOwn
	// PickNeutral picks a neutral picture.
	PickNeutral
	// Stop ends the turn voluntarily.
	Stop
)

// Categories lists every category, in the order they're drawn from.
var Categories = []Category{PickOpponent, PickOwn, PickNeutral, Stop}

func (c Category) String() string {
	switch c {
	case PickOpponent:
		return "opponent"
	case PickOwn:
		return "own"
	case PickNeutral:
		return "neutral"
	case Stop:
		return "stop"
	}
	return "unknown"
}

// SequencerConfig is the raw, unvalidated form of SequencerParams.
type SequencerConfig struct {
	Weights map[string]float64 `yaml:"weights" json:"weights"`
	// Decay is a pointer so that a missing value can be told apart from zero.
	Decay *float64 `yaml:"decay" json:"decay"`
}

// SequencerParams holds validated weights for simulating the opponent's turn.
type SequencerParams struct {
	weights map[Category]float64
	decay   float64
}

// NewSequencerParams validates cfg. Every category needs a weight, and a decay
// has to be given.
func NewSequencerParams(cfg SequencerConfig) (*SequencerParams, error) {
	sp := &SequencerParams{weights: make(map[Category]float64)}
	for _, c := range Categories {
		w, err := lookup(cfg.Weights, "weights", c.String(), nonNegative)
		if err != nil {
			return nil, err
		}
		sp.weights[c] = w
	}

	if cfg.Decay == nil {
		return nil, &ConfigError{Key: "decay", Reason: "missing"}
	}
	if err := nonNegative(*cfg.Decay); err != nil {
		return nil, &ConfigError{Key: "decay", Reason: err.Error()}
	}
	sp.decay = *cfg.Decay

	return sp, nil
}

// Weight returns the configured weight for a category.
func (sp *SequencerParams) Weight(c Category) float64 { return sp.weights[c] }

// Decay is applied to the opponent-color weight once per pick made.
func (sp *SequencerParams) Decay() float64 { return sp.decay }

func lookup(m map[string]float64, section, key string, check func(float64) error) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, &ConfigError{Key: section + "." + key, Reason: "missing"}
	}
	if err := check(v); err != nil {
		return 0, &ConfigError{Key: section + "." + key, Reason: err.Error()}
	}
	return v, nil
}

func nonNegative(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("must be finite, got %v", v)
	}
	if v < 0 {
		return fmt.Errorf("must be non-negative, got %v", v)
	}
	return nil
}

func unitInterval(v float64) error {
	if err := nonNegative(v); err != nil {
		return err
	}
	if v > 1 {
		return fmt.Errorf("must be at most 1, got %v", v)
	}
	return nil
}
