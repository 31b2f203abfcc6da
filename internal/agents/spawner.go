// Population construction — resolves per-attribute scalar or series values
// into one citizen record per index.
package agents

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when population parameters are missing or
// inconsistent.
var ErrInvalidArgument = errors.New("invalid argument")

// Default attribute values applied when an attribute is left unset.
const (
	DefaultCurrentIncome    = 100.0
	DefaultExpectedRiseMean = 0.01
	DefaultExpectedRiseSD   = 0.01
	DefaultCurrentSavings   = 0.0
	DefaultSavingRate       = 0.05
	DefaultInterestRate     = 0.01
)

type attrKind uint8

const (
	attrUnset  attrKind = iota
	attrScalar          // One value broadcast to every citizen
	attrSeries          // One value per citizen
)

// Attribute is the value source for one citizen attribute: either a scalar
// broadcast to everyone or a series assigned positionally. The zero value is
// unset and resolves to the attribute's default.
type Attribute struct {
	kind   attrKind
	scalar float64
	series []float64
}

// Scalar returns an attribute that gives every citizen the value v.
func Scalar(v float64) Attribute {
	return Attribute{kind: attrScalar, scalar: v}
}

// Series returns an attribute that gives citizen i the value vs[i].
// The slice is copied.
func Series(vs ...float64) Attribute {
	cp := make([]float64, len(vs))
	copy(cp, vs)
	return Attribute{kind: attrSeries, series: cp}
}

// IsSet reports whether the attribute was given a value.
func (a Attribute) IsSet() bool {
	return a.kind != attrUnset
}

// IsSeries reports whether the attribute holds one value per citizen.
func (a Attribute) IsSeries() bool {
	return a.kind == attrSeries
}

// Len returns the series length, or 0 for scalar and unset attributes.
func (a Attribute) Len() int {
	return len(a.series)
}

// resolve expands the attribute into exactly size values.
func (a Attribute) resolve(name string, size int, def float64) ([]float64, error) {
	out := make([]float64, size)
	switch a.kind {
	case attrSeries:
		if len(a.series) != size {
			return nil, fmt.Errorf("%s: series has %d values, population size is %d: %w",
				name, len(a.series), size, ErrInvalidArgument)
		}
		copy(out, a.series)
	case attrScalar:
		for i := range out {
			out[i] = a.scalar
		}
	default:
		for i := range out {
			out[i] = def
		}
	}
	return out, nil
}

// PopulationConfig enumerates every citizen attribute plus the population
// size. Size is required; a nil Size is an invalid argument.
type PopulationConfig struct {
	Size *int

	CurrentIncome    Attribute
	ExpectedRiseMean Attribute
	ExpectedRiseSD   Attribute
	CurrentSavings   Attribute
	SavingRate       Attribute
	InterestRate     Attribute
}

// DefaultPopulationConfig returns a config with every attribute set to its
// default scalar and no size.
func DefaultPopulationConfig() PopulationConfig {
	return PopulationConfig{
		CurrentIncome:    Scalar(DefaultCurrentIncome),
		ExpectedRiseMean: Scalar(DefaultExpectedRiseMean),
		ExpectedRiseSD:   Scalar(DefaultExpectedRiseSD),
		CurrentSavings:   Scalar(DefaultCurrentSavings),
		SavingRate:       Scalar(DefaultSavingRate),
		InterestRate:     Scalar(DefaultInterestRate),
	}
}

// Size returns a pointer to n for use as PopulationConfig.Size.
func Size(n int) *int {
	return &n
}

// CreatePopulation builds a population of exactly *cfg.Size citizens with IDs
// 0..size-1. A size of zero or less yields an empty population.
func CreatePopulation(cfg PopulationConfig) (Population, error) {
	if cfg.Size == nil {
		return nil, fmt.Errorf("population size is required: %w", ErrInvalidArgument)
	}
	size := *cfg.Size
	if size <= 0 {
		return Population{}, nil
	}

	income, err := cfg.CurrentIncome.resolve("current_income", size, DefaultCurrentIncome)
	if err != nil {
		return nil, err
	}
	riseMean, err := cfg.ExpectedRiseMean.resolve("expected_rise_mean", size, DefaultExpectedRiseMean)
	if err != nil {
		return nil, err
	}
	riseSD, err := cfg.ExpectedRiseSD.resolve("expected_rise_sd", size, DefaultExpectedRiseSD)
	if err != nil {
		return nil, err
	}
	savings, err := cfg.CurrentSavings.resolve("current_savings", size, DefaultCurrentSavings)
	if err != nil {
		return nil, err
	}
	savingRate, err := cfg.SavingRate.resolve("saving_rate", size, DefaultSavingRate)
	if err != nil {
		return nil, err
	}
	interest, err := cfg.InterestRate.resolve("interest_rate", size, DefaultInterestRate)
	if err != nil {
		return nil, err
	}

	// Citizens live in one contiguous block; the population indexes into it.
	block := make([]Citizen, size)
	pop := make(Population, size)
	for i := 0; i < size; i++ {
		block[i] = Citizen{
			ID:               CitizenID(i),
			CurrentIncome:    income[i],
			ExpectedRiseMean: riseMean[i],
			ExpectedRiseSD:   riseSD[i],
			CurrentSavings:   savings[i],
			SavingRate:       savingRate[i],
			InterestRate:     interest[i],
		}
		pop[i] = &block[i]
	}

	return pop, nil
}
