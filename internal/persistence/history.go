package persistence

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hive-economy/internal/engine"
)

// ResourcePoint is one resource's stock and flows at the end of a cycle.
type ResourcePoint struct {
	Cycle    uint64  `db:"cycle" json:"cycle"`
	Resource string  `db:"resource" json:"resource"`
	Amount   float64 `db:"amount" json:"amount"`
	Produced float64 `db:"produced" json:"produced"`
	Consumed float64 `db:"consumed" json:"consumed"`
}

// EventRow is a recorded building change.
type EventRow struct {
	Cycle    uint64 `db:"cycle" json:"cycle"`
	Kind     string `db:"kind" json:"kind"`
	X        int    `db:"x" json:"x"`
	Y        int    `db:"y" json:"y"`
	Building string `db:"building" json:"building"`
	Level    int    `db:"level" json:"level"`
}

// SaveCycle writes a cycle report and the building changes that led up to it
// in one transaction.
func (db *DB) SaveCycle(runID string, r engine.Report, changes []engine.Change) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO cycles
		(run_id, cycle, producers, active_producers, upgrades, workers, assigned_workers)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Cycle, r.Producers, r.ActiveProducers, r.Upgrades, r.Workers, r.AssignedWorkers,
	)
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", r.Cycle, err)
	}

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO resource_history
		(run_id, cycle, resource, amount, produced, consumed)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rr := range r.Resources {
		if rr.Amount == 0 && rr.Produced == 0 && rr.Consumed == 0 {
			continue
		}
		if _, err := stmt.Exec(runID, r.Cycle, string(rr.Resource), rr.Amount, rr.Produced, rr.Consumed); err != nil {
			return fmt.Errorf("insert %s history: %w", rr.Resource, err)
		}
	}

	for _, c := range changes {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, cycle, kind, x, y, building, level) VALUES (?, ?, ?, ?, ?, ?, ?)",
			runID, c.Cycle, string(c.Kind), c.Pos.X, c.Pos.Y, c.Building, c.Level,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// LoadHistory returns up to limit most recent points for resource, oldest first.
func (db *DB) LoadHistory(runID, resource string, limit int) ([]ResourcePoint, error) {
	if limit <= 0 {
		limit = 100
	}
	var points []ResourcePoint
	err := db.conn.Select(&points, `SELECT cycle, resource, amount, produced, consumed
		FROM resource_history
		WHERE run_id = ? AND resource = ?
		ORDER BY cycle DESC LIMIT ?`,
		runID, resource, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load %s history: %w", resource, err)
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// RecentEvents returns the most recent N building changes, newest first.
func (db *DB) RecentEvents(runID string, limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []EventRow
	err := db.conn.Select(&events,
		"SELECT cycle, kind, x, y, building, level FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit,
	)
	return events, err
}

// Recorder is an engine.Observer that stores every cycle in the history
// store. Building changes are buffered and written with the next cycle.
type Recorder struct {
	db      *DB
	runID   string
	pending []engine.Change
}

// NewRecorder creates a recorder stamping rows with runID.
func NewRecorder(db *DB, runID string) *Recorder {
	return &Recorder{db: db, runID: runID}
}

// BuildingChanged buffers c until the next cycle completes.
func (r *Recorder) BuildingChanged(c engine.Change) {
	r.pending = append(r.pending, c)
}

// CycleCompleted writes the report and buffered changes. Failures are
// logged; the simulation never waits on a retry.
func (r *Recorder) CycleCompleted(rep engine.Report) {
	if err := r.db.SaveCycle(r.runID, rep, r.pending); err != nil {
		slog.Warn("failed to record cycle", "cycle", rep.Cycle, "changes", len(r.pending), "error", err)
	}
	r.pending = r.pending[:0]
}

// Pending returns how many changes await the next cycle.
func (r *Recorder) Pending() int {
	return len(r.pending)
}
