// Package persistence provides SQLite-based storage for simulation results.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-economy/internal/report"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite connection for result storage.
type DB struct {
	conn *sqlx.DB
}

// Run describes one stored simulation run.
type Run struct {
	ID         string `db:"id" json:"id"`
	CreatedAt  int64  `db:"created_at" json:"created_at"` // Unix seconds
	Rounds     int    `db:"rounds" json:"rounds"`
	Population int    `db:"population" json:"population"`
	Seed       *int64 `db:"seed" json:"seed,omitempty"`
	Scenario   string `db:"scenario" json:"scenario"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		rounds INTEGER NOT NULL,
		population INTEGER NOT NULL,
		seed INTEGER,
		scenario TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS result_rows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		pos INTEGER NOT NULL,
		id INTEGER NOT NULL,
		current_income REAL NOT NULL,
		expected_rise_mean REAL NOT NULL,
		expected_rise_sd REAL NOT NULL,
		current_savings REAL NOT NULL,
		saving_rate REAL NOT NULL,
		interest_rate REAL NOT NULL,
		round INTEGER NOT NULL,
		final INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_result_rows_run ON result_rows(run_id, round, pos);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes a run and all its rows in one transaction and returns the
// stored run record.
func (db *DB) SaveRun(scenario string, seed *int64, log *report.ResultLog) (Run, error) {
	population := 0
	if snaps := log.Snapshots(); len(snaps) > 0 {
		population = len(snaps[0].Citizens)
	}
	run := Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().Unix(),
		Rounds:     log.Rounds() - 1,
		Population: population,
		Seed:       seed,
		Scenario:   scenario,
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT INTO runs
		(id, created_at, rounds, population, seed, scenario)
		VALUES (:id, :created_at, :rounds, :population, :seed, :scenario)`, run)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO result_rows
		(run_id, pos, id, current_income, expected_rise_mean, expected_rise_sd,
		 current_savings, saving_rate, interest_rate, round, final)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, err
	}
	defer stmt.Close()

	for _, s := range log.Snapshots() {
		final := 0
		if s.Final {
			final = 1
		}
		for pos, c := range s.Citizens {
			_, err := stmt.Exec(
				run.ID, pos, c.ID, c.CurrentIncome, c.ExpectedRiseMean, c.ExpectedRiseSD,
				c.CurrentSavings, c.SavingRate, c.InterestRate, s.Round, final,
			)
			if err != nil {
				return Run{}, fmt.Errorf("insert row %d/%d: %w", s.Round, c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, err
	}
	slog.Info("run saved", "run_id", run.ID, "rows", log.Len())
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, created_at, rounds, population, seed, scenario FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// LoadRun reads a stored run and rebuilds its result log.
func (db *DB) LoadRun(id string) (Run, *report.ResultLog, error) {
	var run Run
	err := db.conn.Get(&run,
		"SELECT id, created_at, rounds, population, seed, scenario FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("load run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run %s: %w", id, err)
	}

	// An empty population stores no rows; its snapshots are rebuilt from the run record.
	if run.Population == 0 {
		log := report.NewResultLog()
		for r := 0; r <= run.Rounds; r++ {
			log.Append(report.Snapshot{Round: r, Final: r == run.Rounds})
		}
		return run, log, nil
	}

	var rows []report.Row
	err = db.conn.Select(&rows, `SELECT id, current_income, expected_rise_mean, expected_rise_sd,
		current_savings, saving_rate, interest_rate, round, final
		FROM result_rows WHERE run_id = ? ORDER BY round, pos`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load rows for %s: %w", id, err)
	}

	return run, report.FromRows(rows), nil
}
