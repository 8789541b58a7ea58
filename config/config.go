// Package config loads the scoring and sequencing parameters from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/score"
	"gopkg.in/yaml.v3"
)

// Config is the contents of a params file.
type Config struct {
	// Strategy is how clues are compared with pictures, "direct" or "set".
	Strategy  string                    `yaml:"strategy"`
	Score     codenames.ScoreConfig     `yaml:"score"`
	Sequencer codenames.SequencerConfig `yaml:"sequencer"`
}

// Default returns the parameters the assistant ships with.
func Default() *Config {
	decay := 0.25
	return &Config{
		Strategy: score.StrategyDirect,
		Score: codenames.ScoreConfig{
			Weights: map[string]float64{
				"own":      1,
				"opponent": 1,
				"neutral":  1,
				"assassin": 1,
			},
			Decays: map[string]float64{
				"own":      0.7,
				"opponent": 0.7,
				"neutral":  0.7,
			},
		},
		Sequencer: codenames.SequencerConfig{
			Weights: map[string]float64{
				"opponent": 6,
				"own":      1,
				"neutral":  1,
				"stop":     1,
			},
			Decay: &decay,
		},
	}
}

// Load reads the params file at path on top of the defaults, so a file only
// needs to list the values it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every parameter, returning a *codenames.ConfigError for the
// first bad one.
func (c *Config) Validate() error {
	_, _, err := c.Params()
	return err
}

// Params builds the validated parameters.
func (c *Config) Params() (*codenames.ScoreParams, *codenames.SequencerParams, error) {
	switch c.Strategy {
	case "", score.StrategyDirect, score.StrategySet:
	default:
		return nil, nil, &codenames.ConfigError{Key: "strategy", Reason: fmt.Sprintf("unknown strategy %q", c.Strategy)}
	}

	sp, err := codenames.NewScoreParams(c.Score)
	if err != nil {
		return nil, nil, err
	}
	qp, err := codenames.NewSequencerParams(c.Sequencer)
	if err != nil {
		return nil, nil, err
	}
	return sp, qp, nil
}
