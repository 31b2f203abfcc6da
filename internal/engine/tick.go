// Package engine provides the round-based simulation loop.
package engine

import (
	"context"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/entropy"
	"github.com/talgya/mini-economy/internal/report"
)

// Engine drives a Simulation for a fixed number of rounds and records a
// snapshot after each one.
type Engine struct {
	Sim *Simulation

	// OnRound is called after each round's snapshot is recorded, including
	// round 0. Optional.
	OnRound func(round int, stats SimStats)
}

// NewEngine creates an engine for sim.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{Sim: sim}
}

// Run records the initial state as round 0, then advances the simulation
// rounds times, recording each round. Context cancellation is checked between
// rounds; a cancelled run returns the context error and no log. A negative
// rounds is treated as zero.
func (e *Engine) Run(ctx context.Context, rounds int) (*report.ResultLog, error) {
	if rounds < 0 {
		rounds = 0
	}
	slog.Info("simulation started", "rounds", rounds, "population", e.Sim.Population.Len())

	log := report.NewResultLog()
	e.record(log, 0, rounds == 0)

	for r := 1; r <= rounds; r++ {
		if err := ctx.Err(); err != nil {
			slog.Warn("simulation cancelled", "round", r-1, "error", err)
			return nil, err
		}
		e.Sim.Step()
		e.record(log, r, r == rounds)
	}

	st := e.Sim.Stats
	slog.Info("simulation complete",
		"rounds", rounds,
		"rows", log.Len(),
		"total_income", humanize.Commaf(roundCents(st.TotalIncome)),
		"total_savings", humanize.Commaf(roundCents(st.TotalSavings)),
		"mean_income", humanize.CommafWithDigits(st.MeanIncome, 2),
		"mean_savings", humanize.CommafWithDigits(st.MeanSavings, 2),
		"negative_savings", st.NegativeSavings,
	)
	return log, nil
}

func (e *Engine) record(log *report.ResultLog, round int, final bool) {
	log.Append(report.Take(round, final, e.Sim.Population))

	st := e.Sim.Stats
	slog.Debug("round recorded",
		"round", round,
		"final", final,
		"mean_income", st.MeanIncome,
		"mean_savings", st.MeanSavings,
	)
	if e.OnRound != nil {
		e.OnRound(round, st)
	}
}

// SimulateNRounds runs rounds rounds over pop, mutating it in place, and
// returns the snapshots for round 0 through rounds.
func SimulateNRounds(rounds int, pop agents.Population, draws entropy.Source) *report.ResultLog {
	log, _ := NewEngine(NewSimulation(pop, draws)).Run(context.Background(), rounds)
	return log
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}
