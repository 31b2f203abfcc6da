// Simulation holds the population and the draw source and advances them one
// round at a time.
package engine

import (
	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/entropy"
)

// Simulation holds the mutable population state for one run.
type Simulation struct {
	Population agents.Population
	Draws      entropy.Source

	// Statistics as of the most recent round.
	Stats SimStats
}

// SimStats tracks aggregate population statistics.
type SimStats struct {
	Population      int     `json:"population"`
	TotalIncome     float64 `json:"total_income"`
	MeanIncome      float64 `json:"mean_income"`
	TotalSavings    float64 `json:"total_savings"`
	MeanSavings     float64 `json:"mean_savings"`
	NegativeSavings int     `json:"negative_savings"` // Citizens whose savings went below zero
}

// NewSimulation creates a Simulation over pop using draws for income growth.
func NewSimulation(pop agents.Population, draws entropy.Source) *Simulation {
	sim := &Simulation{
		Population: pop,
		Draws:      draws,
	}
	sim.updateStats()
	return sim
}

// Step advances every citizen by one round.
func (s *Simulation) Step() {
	SimulateNextRound(s.Population, s.Draws)
	s.updateStats()
}

// SimulateNextRound updates every citizen in place for one round. Each
// citizen draws its income rise from its own stream, so the result does not
// depend on iteration order. Negative income or savings are left as-is.
func SimulateNextRound(pop agents.Population, draws entropy.Source) {
	for _, c := range pop {
		currentIncome := c.CurrentIncome
		currentSavings := c.CurrentSavings

		rise := draws.Normal(uint64(c.ID), c.ExpectedRiseMean, c.ExpectedRiseSD)
		nextIncome := currentIncome * (1 + rise)

		contribution := nextIncome * c.SavingRate
		// Interest accrues on savings held before this round's contribution.
		interest := currentSavings * c.InterestRate

		c.CurrentIncome = nextIncome
		c.CurrentSavings = currentSavings + interest + contribution
	}
}

// ComputeStats summarises the population's current state.
func ComputeStats(pop agents.Population) SimStats {
	st := SimStats{Population: len(pop)}
	for _, c := range pop {
		st.TotalIncome += c.CurrentIncome
		st.TotalSavings += c.CurrentSavings
		if c.CurrentSavings < 0 {
			st.NegativeSavings++
		}
	}
	if st.Population > 0 {
		st.MeanIncome = st.TotalIncome / float64(st.Population)
		st.MeanSavings = st.TotalSavings / float64(st.Population)
	}
	return st
}

func (s *Simulation) updateStats() {
	s.Stats = ComputeStats(s.Population)
}
