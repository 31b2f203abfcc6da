package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/talgya/mini-economy/internal/agents"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeConfig(t, `
scenario: mixed
seed: 42
rounds: 3
database: results.db
population:
  size: 2
  current_income: 100
  expected_rise_mean: [0.01, 0.02]
  expected_rise_sd:
    values: [0.01, 0.02]
  current_savings:
    value: 50
  interest_rate:
    spread: {base: 0.05, amplitude: 0.01}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Scenario != "mixed" || cfg.SeedOrZero() != 42 || cfg.RoundCount() != 3 || cfg.Database != "results.db" {
		t.Errorf("unexpected config %+v", cfg)
	}

	popCfg, err := cfg.Population.PopulationConfig(cfg.SeedOrZero())
	if err != nil {
		t.Fatalf("population config: %v", err)
	}
	pop, err := agents.CreatePopulation(popCfg)
	if err != nil {
		t.Fatalf("create population: %v", err)
	}
	if pop.Len() != 2 {
		t.Fatalf("expected 2 citizens, got %d", pop.Len())
	}
	if pop[0].CurrentIncome != 100 || pop[1].CurrentIncome != 100 {
		t.Errorf("scalar shorthand not broadcast: %+v %+v", *pop[0], *pop[1])
	}
	if pop[0].ExpectedRiseMean != 0.01 || pop[1].ExpectedRiseMean != 0.02 {
		t.Errorf("list shorthand not applied: %+v %+v", *pop[0], *pop[1])
	}
	if pop[1].ExpectedRiseSD != 0.02 || pop[0].CurrentSavings != 50 {
		t.Errorf("mapping form not applied: %+v", *pop[1])
	}
	if pop[0].SavingRate != agents.DefaultSavingRate {
		t.Errorf("expected default saving rate, got %v", pop[0].SavingRate)
	}
	for _, c := range pop {
		if c.InterestRate < 0.04-1e-12 || c.InterestRate > 0.06+1e-12 {
			t.Errorf("citizen %d: spread interest %v out of range", c.ID, c.InterestRate)
		}
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scenario != "default" || cfg.RoundCount() != DefaultRounds || cfg.Seed != nil {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); !errors.Is(err, agents.ErrInvalidArgument) {
		t.Errorf("expected missing size to be invalid, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "seed: 1\nrounds: 2\npopulation: {size: 3}\n")
	t.Setenv("ECONSIM_SEED", "7")
	t.Setenv("ECONSIM_ROUNDS", "0")
	t.Setenv("ECONSIM_SIZE", "9")
	t.Setenv("ECONSIM_DB", "env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SeedOrZero() != 7 || cfg.RoundCount() != 0 || *cfg.Population.Size != 9 || cfg.Database != "env.db" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("ECONSIM_ROUNDS", "many")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric ECONSIM_ROUNDS")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "population: {size: [1, 2}\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateNegativeRounds(t *testing.T) {
	path := writeConfig(t, "rounds: -1\npopulation: {size: 1}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative rounds to fail validation")
	}
}

func TestAttributeSpecAmbiguous(t *testing.T) {
	path := writeConfig(t, `
population:
  size: 2
  saving_rate:
    value: 0.1
    values: [0.1, 0.2]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.Population.PopulationConfig(0); !errors.Is(err, agents.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSeriesLengthMismatch(t *testing.T) {
	path := writeConfig(t, "population: {size: 3, interest_rate: [0.1, 0.2]}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	popCfg, err := cfg.Population.PopulationConfig(0)
	if err != nil {
		t.Fatalf("population config: %v", err)
	}
	if _, err := agents.CreatePopulation(popCfg); !errors.Is(err, agents.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSpreadSeedsDifferPerAttribute(t *testing.T) {
	path := writeConfig(t, `
population:
  size: 50
  expected_rise_mean: {spread: {base: 0, amplitude: 1}}
  expected_rise_sd: {spread: {base: 0, amplitude: 1}}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	popCfg, err := cfg.Population.PopulationConfig(3)
	if err != nil {
		t.Fatalf("population config: %v", err)
	}
	pop, err := agents.CreatePopulation(popCfg)
	if err != nil {
		t.Fatalf("create population: %v", err)
	}
	same := 0
	for _, c := range pop {
		if c.ExpectedRiseMean == c.ExpectedRiseSD {
			same++
		}
	}
	if same == len(pop) {
		t.Error("expected distinct spread series per attribute")
	}
}
