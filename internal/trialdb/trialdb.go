// Package trialdb persists simulation runs and their per-step poses to
// SQLite, and exposes the admin debug surface over the same database.
package trialdb

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// OpenDB opens the database without touching the schema. Use this for
// migration tooling; New is the normal entry point.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &DB{db}, nil
}

// New opens the database and applies any pending migrations.
func New(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Run is one recorded batch of trials with a fixed command and noise model.
type Run struct {
	RunID           string    `json:"run_id"`
	Robot           string    `json:"robot"`
	Controller      string    `json:"controller"`
	Command         string    `json:"command"`
	Amount          float64   `json:"amount"`
	NoiseMultiplier float64   `json:"noise_multiplier"`
	Seed            uint64    `json:"seed"`
	Trials          int       `json:"trials"`
	CreatedAt       time.Time `json:"created_at"`
}

// StepRecord is one applied motion inside a run.
type StepRecord struct {
	RunID     string  `json:"run_id"`
	Trial     int     `json:"trial"`
	StepIndex int     `json:"step_index"`
	Command   string  `json:"command"`
	Amount    float64 `json:"amount"`
	PosX      float64 `json:"pos_x"`
	PosY      float64 `json:"pos_y"`
	PosZ      float64 `json:"pos_z"`
	YawRad    float64 `json:"yaw_rad"`
}

func (db *DB) InsertRun(run Run) error {
	_, err := db.Exec(
		`INSERT INTO runs (
			run_id, robot, controller, command, amount, noise_multiplier, seed, trials
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Robot, run.Controller, run.Command, run.Amount,
		run.NoiseMultiplier, run.Seed, run.Trials,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}
	return nil
}

func (db *DB) InsertStep(step StepRecord) error {
	_, err := db.Exec(
		`INSERT INTO steps (
			run_id, trial, step_index, command, amount, pos_x, pos_y, pos_z, yaw_rad
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		step.RunID, step.Trial, step.StepIndex, step.Command, step.Amount,
		step.PosX, step.PosY, step.PosZ, step.YawRad,
	)
	if err != nil {
		return fmt.Errorf("failed to insert step %d/%d for run %s: %w", step.Trial, step.StepIndex, step.RunID, err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (db *DB) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT run_id, robot, controller, command, amount, noise_multiplier, seed, trials, created_at
		 FROM runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Robot, &r.Controller, &r.Command, &r.Amount,
			&r.NoiseMultiplier, &r.Seed, &r.Trials, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// RunSteps returns every step of a run ordered by trial then step index.
func (db *DB) RunSteps(runID string) ([]StepRecord, error) {
	rows, err := db.Query(
		`SELECT run_id, trial, step_index, command, amount, pos_x, pos_y, pos_z, yaw_rad
		 FROM steps WHERE run_id = ? ORDER BY trial, step_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var s StepRecord
		if err := rows.Scan(&s.RunID, &s.Trial, &s.StepIndex, &s.Command, &s.Amount,
			&s.PosX, &s.PosY, &s.PosZ, &s.YawRad); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// RunSummary aggregates the final pose of every trial in a run.
type RunSummary struct {
	RunID   string  `json:"run_id"`
	Trials  int     `json:"trials"`
	MeanX   float64 `json:"mean_x"`
	MeanZ   float64 `json:"mean_z"`
	MeanYaw float64 `json:"mean_yaw_rad"`
}

// Summary computes the mean final pose across all trials of a run.
func (db *DB) Summary(runID string) (RunSummary, error) {
	row := db.QueryRow(
		`SELECT COUNT(*),
			COALESCE(AVG(pos_x), 0),
			COALESCE(AVG(pos_z), 0),
			COALESCE(AVG(yaw_rad), 0)
		 FROM steps s
		 WHERE run_id = ?
		   AND step_index = (
			SELECT MAX(step_index) FROM steps
			WHERE run_id = s.run_id AND trial = s.trial
		 )`, runID)

	summary := RunSummary{RunID: runID}
	if err := row.Scan(&summary.Trials, &summary.MeanX, &summary.MeanZ, &summary.MeanYaw); err != nil {
		return RunSummary{}, fmt.Errorf("failed to summarise run %s: %w", runID, err)
	}
	return summary, nil
}
