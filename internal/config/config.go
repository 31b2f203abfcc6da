// Package config loads simulation scenarios from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/talgya/mini-economy/internal/agents"
)

// DefaultRounds is used when a scenario does not set rounds.
const DefaultRounds = 10

// Config holds one simulation scenario.
type Config struct {
	Scenario   string         `yaml:"scenario"`
	Seed       *int64         `yaml:"seed"`   // nil = non-reproducible draws
	Rounds     *int           `yaml:"rounds"` // nil = DefaultRounds
	Database   string         `yaml:"database"`
	Population PopulationSpec `yaml:"population"`
}

// PopulationSpec describes the initial population.
type PopulationSpec struct {
	Size *int `yaml:"size"`

	CurrentIncome    AttributeSpec `yaml:"current_income"`
	ExpectedRiseMean AttributeSpec `yaml:"expected_rise_mean"`
	ExpectedRiseSD   AttributeSpec `yaml:"expected_rise_sd"`
	CurrentSavings   AttributeSpec `yaml:"current_savings"`
	SavingRate       AttributeSpec `yaml:"saving_rate"`
	InterestRate     AttributeSpec `yaml:"interest_rate"`
}

// AttributeSpec sets one citizen attribute. At most one of Value, Values and
// Spread may be given; none leaves the attribute at its default.
//
// In YAML an attribute may be written as a bare number (value), a list
// (values) or a mapping with one of the keys value, values, spread.
type AttributeSpec struct {
	Value  *float64    `yaml:"value"`
	Values []float64   `yaml:"values"`
	Spread *SpreadSpec `yaml:"spread"`
}

// SpreadSpec generates a smoothly varying series around Base.
type SpreadSpec struct {
	Base      float64 `yaml:"base"`
	Amplitude float64 `yaml:"amplitude"`
	Seed      *int64  `yaml:"seed"` // nil = derived from the scenario seed
}

// UnmarshalYAML accepts the bare-number and list shorthands.
func (a *AttributeSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		a.Value = &v
		return nil
	case yaml.SequenceNode:
		return node.Decode(&a.Values)
	}

	type plain AttributeSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*a = AttributeSpec(p)
	return nil
}

// Attribute resolves the spec into an agents.Attribute for a population of
// the given size.
func (a AttributeSpec) Attribute(name string, size int, seed int64) (agents.Attribute, error) {
	set := 0
	if a.Value != nil {
		set++
	}
	if a.Values != nil {
		set++
	}
	if a.Spread != nil {
		set++
	}
	if set > 1 {
		return agents.Attribute{}, fmt.Errorf("%s: only one of value, values, spread may be set: %w",
			name, agents.ErrInvalidArgument)
	}

	switch {
	case a.Value != nil:
		return agents.Scalar(*a.Value), nil
	case a.Values != nil:
		return agents.Series(a.Values...), nil
	case a.Spread != nil:
		if a.Spread.Seed != nil {
			seed = *a.Spread.Seed
		}
		return agents.SpreadSeries(seed, size, a.Spread.Base, a.Spread.Amplitude), nil
	}
	return agents.Attribute{}, nil
}

// PopulationConfig resolves the spec into a factory config. Spread
// attributes without their own seed are offset from seed so that each
// attribute gets a distinct series.
func (p PopulationSpec) PopulationConfig(seed int64) (agents.PopulationConfig, error) {
	cfg := agents.PopulationConfig{Size: p.Size}
	size := 0
	if p.Size != nil {
		size = *p.Size
	}

	fields := []struct {
		name string
		spec AttributeSpec
		dst  *agents.Attribute
	}{
		{"current_income", p.CurrentIncome, &cfg.CurrentIncome},
		{"expected_rise_mean", p.ExpectedRiseMean, &cfg.ExpectedRiseMean},
		{"expected_rise_sd", p.ExpectedRiseSD, &cfg.ExpectedRiseSD},
		{"current_savings", p.CurrentSavings, &cfg.CurrentSavings},
		{"saving_rate", p.SavingRate, &cfg.SavingRate},
		{"interest_rate", p.InterestRate, &cfg.InterestRate},
	}
	for i, f := range fields {
		attr, err := f.spec.Attribute(f.name, size, seed+int64(i+1)*100)
		if err != nil {
			return agents.PopulationConfig{}, err
		}
		*f.dst = attr
	}
	return cfg, nil
}

// Load reads a scenario from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ECONSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ECONSIM_SEED: %w", err)
		}
		cfg.Seed = &seed
	}
	if v := os.Getenv("ECONSIM_ROUNDS"); v != "" {
		rounds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ECONSIM_ROUNDS: %w", err)
		}
		cfg.Rounds = &rounds
	}
	if v := os.Getenv("ECONSIM_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ECONSIM_SIZE: %w", err)
		}
		cfg.Population.Size = &size
	}
	if v := os.Getenv("ECONSIM_DB"); v != "" {
		cfg.Database = v
	}

	// Defaults
	if cfg.Scenario == "" {
		cfg.Scenario = "default"
	}
	if cfg.Rounds == nil {
		r := DefaultRounds
		cfg.Rounds = &r
	}

	return cfg, nil
}

// Validate checks that the scenario can be run.
func (c *Config) Validate() error {
	if c.Population.Size == nil {
		return fmt.Errorf("population.size is required: %w", agents.ErrInvalidArgument)
	}
	if c.Rounds != nil && *c.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative, got %d", *c.Rounds)
	}
	return nil
}

// RoundCount returns the configured number of rounds.
func (c *Config) RoundCount() int {
	if c.Rounds == nil {
		return DefaultRounds
	}
	return *c.Rounds
}

// SeedOrZero returns the scenario seed, or 0 when none is set.
func (c *Config) SeedOrZero() int64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}
