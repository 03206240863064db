// Package persistence provides SQLite-based storage of per-step statistics.
// World state itself is never saved; every run starts from generation.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-economy/internal/agents"
	"github.com/talgya/mini-economy/internal/engine"
	"github.com/talgya/mini-economy/internal/world"
)

// DB wraps a SQLite connection for statistics history.
type DB struct {
	conn *sqlx.DB
}

// Run describes one simulation run.
type Run struct {
	ID        string `db:"id" json:"id"`
	StartedAt string `db:"started_at" json:"started_at"` // RFC 3339, UTC
	Width     int    `db:"width" json:"width"`
	Height    int    `db:"height" json:"height"`
	Seed      int64  `db:"seed" json:"seed"`
}

// StatsRow is the statistics snapshot recorded after one step.
type StatsRow struct {
	RunID          string `db:"run_id" json:"run_id"`
	Step           int64  `db:"step" json:"step"`
	Population     int    `db:"population" json:"population"`
	Harvesters     int    `db:"harvesters" json:"harvesters"`
	Processors     int    `db:"processors" json:"processors"`
	Builders       int    `db:"builders" json:"builders"`
	Carrying       int    `db:"carrying" json:"carrying"`
	Births         int    `db:"births" json:"births"`
	Settlements    int    `db:"settlements" json:"settlements"`
	ResourceSites  int    `db:"resource_sites" json:"resource_sites"`
	RawTotal       int    `db:"raw_total" json:"raw_total"`
	ProcessedTotal int    `db:"processed_total" json:"processed_total"`
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
		started_at TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		seed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tick_stats (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		population INTEGER NOT NULL,
		harvesters INTEGER NOT NULL,
		processors INTEGER NOT NULL,
		builders INTEGER NOT NULL,
		carrying INTEGER NOT NULL,
		births INTEGER NOT NULL,
		settlements INTEGER NOT NULL,
		resource_sites INTEGER NOT NULL,
		raw_total INTEGER NOT NULL,
		processed_total INTEGER NOT NULL,
		PRIMARY KEY (run_id, step)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a run so its statistics can be recorded.
func (db *DB) StartRun(id uuid.UUID, width, height int, seed int64) error {
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, started_at, width, height, seed) VALUES (?, ?, ?, ?, ?)",
		id.String(), time.Now().UTC().Format(time.RFC3339), width, height, seed,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// GetRun returns the run with the given id.
func (db *DB) GetRun(id uuid.UUID) (Run, error) {
	var run Run
	err := db.conn.Get(&run, "SELECT id, started_at, width, height, seed FROM runs WHERE id = ?", id.String())
	return run, err
}

// SaveStep appends the statistics of one completed step.
func (db *DB) SaveStep(runID uuid.UUID, summary engine.StepSummary) error {
	st := summary.Stats
	row := StatsRow{
		RunID:          runID.String(),
		Step:           int64(summary.Step),
		Population:     st.Population,
		Harvesters:     st.JobCounts[agents.JobHarvester],
		Processors:     st.JobCounts[agents.JobProcessor],
		Builders:       st.JobCounts[agents.JobBuilder],
		Carrying:       st.Carrying,
		Births:         st.Births,
		Settlements:    st.Settlements,
		ResourceSites:  st.TileCounts[world.TileResourceSite],
		RawTotal:       st.RawTotal,
		ProcessedTotal: st.ProcessedTotal,
	}

	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO tick_stats
		(run_id, step, population, harvesters, processors, builders, carrying,
		 births, settlements, resource_sites, raw_total, processed_total)
		VALUES (:run_id, :step, :population, :harvesters, :processors, :builders, :carrying,
		 :births, :settlements, :resource_sites, :raw_total, :processed_total)`, row)
	if err != nil {
		return fmt.Errorf("insert step %d: %w", summary.Step, err)
	}

	if st.Births > 0 {
		slog.Debug("step recorded", "run", runID, "step", summary.Step,
			"population", humanize.Comma(int64(st.Population)), "births", st.Births)
	}
	return nil
}

// LoadStatsHistory returns up to limit rows of a run with from <= step <= to,
// ordered by step.
func (db *DB) LoadStatsHistory(runID uuid.UUID, from, to int64, limit int) ([]StatsRow, error) {
	var rows []StatsRow
	err := db.conn.Select(&rows, `SELECT run_id, step, population, harvesters, processors, builders,
		carrying, births, settlements, resource_sites, raw_total, processed_total
		FROM tick_stats
		WHERE run_id = ? AND step >= ? AND step <= ?
		ORDER BY step ASC
		LIMIT ?`,
		runID.String(), from, to, limit,
	)
	return rows, err
}
