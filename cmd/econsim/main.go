// Command econsim runs the agent-based savings and income simulation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/config"
	"github.com/talgya/mini-economy/internal/engine"
	"github.com/talgya/mini-economy/internal/entropy"
	"github.com/talgya/mini-economy/internal/persistence"
	"github.com/talgya/mini-economy/internal/report"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "econsim",
		Short: "Agent-based income and savings simulator",
		Long: `econsim generates a population of citizens with income and savings
attributes and advances them over discrete rounds, recording every
citizen's state after each round into a result table.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return setupLogging(cmd.ErrOrStderr(), level)
		},
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "econsim version %s\n", version)
		},
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create a population and simulate it for a number of rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			// Flags override file and environment.
			flags := cmd.Flags()
			if flags.Changed("rounds") {
				r, _ := flags.GetInt("rounds")
				cfg.Rounds = &r
			}
			if flags.Changed("size") {
				n, _ := flags.GetInt("size")
				cfg.Population.Size = &n
			}
			if flags.Changed("seed") {
				s, _ := flags.GetInt64("seed")
				cfg.Seed = &s
			}
			if flags.Changed("db") {
				cfg.Database, _ = flags.GetString("db")
			}
			if flags.Changed("scenario") {
				cfg.Scenario, _ = flags.GetString("scenario")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			formatName, _ := flags.GetString("format")
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}

			popCfg, err := cfg.Population.PopulationConfig(cfg.SeedOrZero())
			if err != nil {
				return err
			}
			pop, err := agents.CreatePopulation(popCfg)
			if err != nil {
				return err
			}
			slog.Info("population created", "scenario", cfg.Scenario, "size", pop.Len(), "seeded", cfg.Seed != nil)

			sim := engine.NewSimulation(pop, entropy.New(cfg.Seed))
			log, err := engine.NewEngine(sim).Run(cmd.Context(), cfg.RoundCount())
			if err != nil {
				return err
			}

			if cfg.Database != "" {
				if dir := filepath.Dir(cfg.Database); dir != "." {
					if err := os.MkdirAll(dir, 0755); err != nil {
						return fmt.Errorf("create database directory: %w", err)
					}
				}
				db, err := persistence.Open(cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()
				run, err := db.SaveRun(cfg.Scenario, cfg.Seed, log)
				if err != nil {
					return fmt.Errorf("save run: %w", err)
				}
				slog.Info("results stored", "run_id", run.ID, "path", cfg.Database)
			}

			out, _ := flags.GetString("out")
			if out == "" {
				return nil
			}
			w := cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return log.Write(w, format)
		},
	}

	cmd.Flags().String("config", "", "Scenario YAML file")
	cmd.Flags().String("scenario", "", "Scenario name recorded with stored runs")
	cmd.Flags().Int("rounds", config.DefaultRounds, "Number of rounds to simulate")
	cmd.Flags().Int("size", 0, "Population size")
	cmd.Flags().Int64("seed", 0, "Seed for reproducible draws (unseeded runs use crypto/rand)")
	cmd.Flags().String("db", "", "SQLite database to store the run in")
	cmd.Flags().String("out", "-", "Result table output file (- for stdout, empty to skip)")
	cmd.Flags().String("format", "csv", "Result table format (csv, json)")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs or print one run's result table",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("db")
			if path == "" {
				path = os.Getenv("ECONSIM_DB")
			}
			if path == "" {
				return fmt.Errorf("--db is required")
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			db, err := persistence.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			runID, _ := cmd.Flags().GetString("run")
			formatName, _ := cmd.Flags().GetString("format")
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}

			if runID != "" {
				_, log, err := db.LoadRun(runID)
				if err != nil {
					return err
				}
				return log.Write(cmd.OutOrStdout(), format)
			}

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := db.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if format == report.FormatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			for _, r := range runs {
				seed := "-"
				if r.Seed != nil {
					seed = fmt.Sprintf("%d", *r.Seed)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s rounds=%d population=%d seed=%s\n",
					r.ID, r.Scenario, r.Rounds, r.Population, seed)
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite database holding stored runs")
	cmd.Flags().String("run", "", "Run ID to print")
	cmd.Flags().Int("limit", 20, "Maximum runs to list")
	cmd.Flags().String("format", "csv", "Output format (csv, json)")

	return cmd
}
