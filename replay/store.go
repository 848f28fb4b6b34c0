// Package replay records one row per simulation step to an embedded, cgo-
// free SQLite database, the storage layer SPEC_FULL.md §3 gives a scripted
// physics sandbox for deterministic post-mortem replay/diffing of a run.
package replay

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bresilla/muli/physics"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	world_id   TEXT NOT NULL,
	started_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS frames (
	run_id    TEXT NOT NULL,
	step      INTEGER NOT NULL,
	body_id   INTEGER NOT NULL,
	x         REAL NOT NULL,
	y         REAL NOT NULL,
	angle     REAL NOT NULL,
	vx        REAL NOT NULL,
	vy        REAL NOT NULL,
	angular_v REAL NOT NULL,
	PRIMARY KEY (run_id, step, body_id)
);
`

// Store is an embedded SQLite-backed recorder. One Store may record several
// runs as long as each is given a distinct run id.
type Store struct {
	db *sql.DB
}

// Open creates (or reuses) a SQLite database file at path and ensures its
// schema exists. Pass ":memory:" for a scratch, process-local store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("replay: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// BeginRun inserts a new run row and returns a Recorder scoped to it. runID
// must be unique within the store (the caller typically uses a
// github.com/google/uuid string, matching World.ID()'s own id scheme).
func (s *Store) BeginRun(runID string, w *physics.World) (*Recorder, error) {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, world_id, started_at) VALUES (?, ?, ?)`,
		runID, w.ID(), time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("replay: begin run %s: %w", runID, err)
	}
	return &Recorder{db: s.db, runID: runID}, nil
}

// Recorder records successive World.Step snapshots under one run id.
type Recorder struct {
	db    *sql.DB
	runID string
	step  uint64
}

// RecordStep inserts one row per body at the recorder's current step, then
// advances the step counter. Call it once per World.Step, after the step
// has run, so recorded positions reflect the post-step state.
func (r *Recorder) RecordStep(w *physics.World) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("replay: begin tx: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO frames (run_id, step, body_id, x, y, angle, vx, vy, angular_v)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("replay: prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range w.Bodies() {
		t := b.Transform()
		v := b.LinearVelocity()
		if _, err := stmt.Exec(r.runID, r.step, b.ID(), t.Position.X, t.Position.Y, t.Rotation.Angle(), v.X, v.Y, b.AngularVelocity()); err != nil {
			tx.Rollback()
			return fmt.Errorf("replay: insert step %d body %d: %w", r.step, b.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replay: commit: %w", err)
	}
	r.step++
	return nil
}

// Frame is one recorded body state, as read back by Replay.
type Frame struct {
	Step     uint64
	BodyID   uint32
	X, Y     float64
	Angle    float64
	VX, VY   float64
	Angular  float64
}

// Replay reads back every frame recorded for runID, ordered by step then
// body id, for offline diffing or reconstruction.
func (s *Store) Replay(runID string) ([]Frame, error) {
	rows, err := s.db.Query(`
		SELECT step, body_id, x, y, angle, vx, vy, angular_v
		FROM frames WHERE run_id = ? ORDER BY step, body_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("replay: query run %s: %w", runID, err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		if err := rows.Scan(&f.Step, &f.BodyID, &f.X, &f.Y, &f.Angle, &f.VX, &f.VY, &f.Angular); err != nil {
			return nil, fmt.Errorf("replay: scan: %w", err)
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}
