// Package report records per-round population snapshots into a result table.
package report

import (
	"github.com/talgya/mini-economy/internal/agents"
)

// Snapshot is the full state of every citizen at one round. Citizens are
// held by value so later rounds cannot change a recorded snapshot.
type Snapshot struct {
	Round    int              `json:"round"`
	Final    bool             `json:"final"`
	Citizens []agents.Citizen `json:"citizens"`
}

// Take copies the population's current state into a snapshot.
func Take(round int, final bool, pop agents.Population) Snapshot {
	return Snapshot{
		Round:    round,
		Final:    final,
		Citizens: pop.Values(),
	}
}

// Row is one citizen at one round: the citizen's attributes plus the round
// number and final flag.
type Row struct {
	agents.Citizen
	Round int  `json:"round" db:"round"`
	Final bool `json:"final" db:"final"`
}

// Columns lists the result table columns in output order.
var Columns = []string{
	"id",
	"current_income",
	"expected_rise_mean",
	"expected_rise_sd",
	"current_savings",
	"saving_rate",
	"interest_rate",
	"round",
	"final",
}

// ResultLog is the append-only sequence of snapshots for one run.
type ResultLog struct {
	snapshots []Snapshot
	rows      int
}

// NewResultLog creates an empty log.
func NewResultLog() *ResultLog {
	return &ResultLog{}
}

// Append adds a snapshot after all previously recorded ones.
func (l *ResultLog) Append(s Snapshot) {
	l.snapshots = append(l.snapshots, s)
	l.rows += len(s.Citizens)
}

// Snapshots returns the recorded snapshots in round order. The returned
// slice must not be modified.
func (l *ResultLog) Snapshots() []Snapshot {
	return l.snapshots
}

// Len returns the number of rows in the table (citizens × snapshots).
func (l *ResultLog) Len() int {
	return l.rows
}

// Rounds returns the number of snapshots recorded.
func (l *ResultLog) Rounds() int {
	return len(l.snapshots)
}

// Round returns the snapshot for round r.
func (l *ResultLog) Round(r int) (Snapshot, bool) {
	for _, s := range l.snapshots {
		if s.Round == r {
			return s, true
		}
	}
	return Snapshot{}, false
}

// Rows flattens the log into table rows ordered by round, then population order.
func (l *ResultLog) Rows() []Row {
	rows := make([]Row, 0, l.rows)
	for _, s := range l.snapshots {
		for _, c := range s.Citizens {
			rows = append(rows, Row{Citizen: c, Round: s.Round, Final: s.Final})
		}
	}
	return rows
}

// Final returns the rows flagged final.
func (l *ResultLog) Final() []Row {
	var rows []Row
	for _, s := range l.snapshots {
		if !s.Final {
			continue
		}
		for _, c := range s.Citizens {
			rows = append(rows, Row{Citizen: c, Round: s.Round, Final: true})
		}
	}
	return rows
}

// FromRows rebuilds a log from table rows. Rows must be grouped by round in
// ascending order, as produced by Rows.
func FromRows(rows []Row) *ResultLog {
	l := NewResultLog()
	for i := 0; i < len(rows); {
		j := i
		snap := Snapshot{Round: rows[i].Round, Final: rows[i].Final}
		for j < len(rows) && rows[j].Round == snap.Round {
			snap.Citizens = append(snap.Citizens, rows[j].Citizen)
			j++
		}
		l.Append(snap)
		i = j
	}
	return l
}
