package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/report"
)

// Writer provides methods to write analysis results to the database.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new database writer.
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// Run is one invocation of the analyzer over a set of replays.
type Run struct {
	ID        string
	StartedAt time.Time
	ReplayDir string
	Debounce  float64
}

// PlayerSummary is one player's totals across every match of a run.
type PlayerSummary struct {
	RunID          string
	PlayerID       string
	Policy         string
	Matches        int
	Elapsed        float64
	Ballcam        float64
	Swaps          int
	Percent        *float64 // nil when no time was counted
	SwapsPerMinute float64
}

// InsertRun stores a run. An empty ID is filled with a new UUID, which is
// returned.
func (w *Writer) InsertRun(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	query := `
		INSERT INTO runs (id, started_at, replay_dir, debounce)
		VALUES (?, ?, ?, ?)
	`
	_, err := w.db.ExecContext(ctx, query, r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.ReplayDir, r.Debounce)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return r.ID, nil
}

// InsertReplay stores one replay's metadata and returns its row id.
func (w *Writer) InsertReplay(ctx context.Context, runID, path string, meta replay.Metadata) (int64, error) {
	return insertReplay(ctx, w.db, runID, path, meta)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertReplay(ctx context.Context, ex execer, runID, path string, meta replay.Metadata) (int64, error) {
	query := `
		INSERT INTO replays (run_id, path, date, player_name, playlist, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var playerName *string
	if meta.PlayerName != "" {
		playerName = &meta.PlayerName
	}
	res, err := ex.ExecContext(ctx, query,
		runID, path, meta.Date.Format(replay.DateLayout), playerName, meta.Playlist,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert replay: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get replay id: %w", err)
	}
	return id, nil
}

// InsertPlayerResults stores every player's buckets for a replay in a single
// transaction.
func (w *Writer) InsertPlayerResults(ctx context.Context, replayID int64, results map[replay.PlayerID]extractors.PlayerResult) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPlayerResults(ctx, tx, replayID, results); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertPlayerResults(ctx context.Context, tx *sql.Tx, replayID int64, results map[replay.PlayerID]extractors.PlayerResult) error {
	query := `
		INSERT OR REPLACE INTO player_results (
			replay_id, player_id, ping,
			all_elapsed, all_ballcam, all_swaps,
			freeze_excluded_elapsed, freeze_excluded_ballcam, freeze_excluded_swaps,
			active_only_elapsed, active_only_ballcam, active_only_swaps
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for pid, r := range results {
		_, err := stmt.ExecContext(ctx,
			replayID, pid.String(), r.Ping,
			r.All.Elapsed, r.All.Ballcam, r.All.Swaps,
			r.FreezeExcluded.Elapsed, r.FreezeExcluded.Ballcam, r.FreezeExcluded.Swaps,
			r.ActiveOnly.Elapsed, r.ActiveOnly.Ballcam, r.ActiveOnly.Swaps,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for player %s: %w", pid, err)
		}
	}
	return nil
}

// SaveMatch stores a replay and its player results atomically.
func (w *Writer) SaveMatch(ctx context.Context, runID string, m report.Match) (int64, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertReplay(ctx, tx, runID, m.Path, m.Meta)
	if err != nil {
		return 0, err
	}
	if err := insertPlayerResults(ctx, tx, id, m.Results); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// InsertFailure records a replay that could not be analyzed.
func (w *Writer) InsertFailure(ctx context.Context, runID, path string, cause error) error {
	query := `INSERT INTO failures (run_id, path, error) VALUES (?, ?, ?)`
	_, err := w.db.ExecContext(ctx, query, runID, path, cause.Error())
	if err != nil {
		return fmt.Errorf("failed to insert failure: %w", err)
	}
	return nil
}

// InsertPlayerSummary inserts or replaces a player summary record.
func (w *Writer) InsertPlayerSummary(ctx context.Context, s PlayerSummary) error {
	query := `
		INSERT OR REPLACE INTO player_summaries (
			run_id, player_id, policy, matches, elapsed, ballcam, swaps, percent, swaps_per_minute
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := w.db.ExecContext(ctx, query,
		s.RunID, s.PlayerID, s.Policy, s.Matches, s.Elapsed, s.Ballcam, s.Swaps, s.Percent, s.SwapsPerMinute,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player summary: %w", err)
	}
	return nil
}

// SetMeta sets a metadata key-value pair.
func (w *Writer) SetMeta(ctx context.Context, key, value string) error {
	query := `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`
	_, err := w.db.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta: %w", err)
	}
	return nil
}
