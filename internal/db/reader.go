package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/report"
)

// Reader provides methods to read analysis results from the database.
type Reader struct {
	db *sql.DB
}

// NewReader creates a new database reader.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// MatchQuery represents query parameters for matches. Zero fields do not
// filter.
type MatchQuery struct {
	RunID    string
	Playlist string
	Since    time.Time
}

// GetMatches rebuilds the stored matches, ordered by date.
func (r *Reader) GetMatches(ctx context.Context, q MatchQuery) ([]report.Match, error) {
	query := `
		SELECT r.id, r.path, r.date, r.player_name, r.playlist,
		       p.player_id, p.ping,
		       p.all_elapsed, p.all_ballcam, p.all_swaps,
		       p.freeze_excluded_elapsed, p.freeze_excluded_ballcam, p.freeze_excluded_swaps,
		       p.active_only_elapsed, p.active_only_ballcam, p.active_only_swaps
		FROM replays r
		LEFT JOIN player_results p ON p.replay_id = r.id
		WHERE 1 = 1
	`
	var args []interface{}

	if q.RunID != "" {
		query += " AND r.run_id = ?"
		args = append(args, q.RunID)
	}
	if q.Playlist != "" {
		query += " AND r.playlist = ?"
		args = append(args, q.Playlist)
	}
	if !q.Since.IsZero() {
		query += " AND r.date >= ?"
		args = append(args, q.Since.Format(replay.DateLayout))
	}

	query += " ORDER BY r.date ASC, r.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]report.Match, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id         int64
			path, date string
			playlist   string
			playerName sql.NullString
			playerID   sql.NullString
			ping       sql.NullInt64
			all, fe    extractors.Bucket
			ao         extractors.Bucket
		)
		err := rows.Scan(
			&id, &path, &date, &playerName, &playlist,
			&playerID, &ping,
			nullFloat{&all.Elapsed}, nullFloat{&all.Ballcam}, nullInt{&all.Swaps},
			nullFloat{&fe.Elapsed}, nullFloat{&fe.Ballcam}, nullInt{&fe.Swaps},
			nullFloat{&ao.Elapsed}, nullFloat{&ao.Ballcam}, nullInt{&ao.Swaps},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}

		i, ok := index[id]
		if !ok {
			d, err := time.Parse(replay.DateLayout, date)
			if err != nil {
				return nil, fmt.Errorf("replay %d has bad date %q: %w", id, date, err)
			}
			matches = append(matches, report.Match{
				Path:    path,
				Meta:    replay.Metadata{Date: d, PlayerName: playerName.String, Playlist: playlist},
				Results: make(map[replay.PlayerID]extractors.PlayerResult),
			})
			i = len(matches) - 1
			index[id] = i
		}

		if !playerID.Valid {
			continue
		}
		pid, err := replay.ParsePlayerID(playerID.String)
		if err != nil {
			return nil, fmt.Errorf("replay %d: %w", id, err)
		}
		res := extractors.PlayerResult{All: all, FreezeExcluded: fe, ActiveOnly: ao}
		if ping.Valid {
			p := int(ping.Int64)
			res.Ping = &p
		}
		matches[i].Results[pid] = res
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// CountReplays returns the number of stored replays for a run, or for all
// runs when runID is empty.
func (r *Reader) CountReplays(ctx context.Context, runID string) (int, error) {
	query := `SELECT COUNT(*) FROM replays`
	var args []interface{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count replays: %w", err)
	}
	return n, nil
}

// LatestRun returns the id of the most recently started run, or "" if none.
func (r *Reader) LatestRun(ctx context.Context) (string, error) {
	query := `SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`
	var id string
	err := r.db.QueryRowContext(ctx, query).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest run: %w", err)
	}
	return id, nil
}

// GetFailures returns path to error message for a run's failed replays.
func (r *Reader) GetFailures(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT path, error FROM failures WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, msg string
		if err := rows.Scan(&path, &msg); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		out[path] = msg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failures: %w", err)
	}
	return out, nil
}

// GetPlayerSummaries retrieves a run's player summaries for one policy,
// highest ballcam share first.
func (r *Reader) GetPlayerSummaries(ctx context.Context, runID, policy string) ([]PlayerSummary, error) {
	query := `
		SELECT run_id, player_id, policy, matches, elapsed, ballcam, swaps, percent, swaps_per_minute
		FROM player_summaries
		WHERE run_id = ? AND policy = ?
		ORDER BY percent DESC, player_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, runID, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to query player summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]PlayerSummary, 0)
	for rows.Next() {
		var s PlayerSummary
		var percent sql.NullFloat64
		err := rows.Scan(
			&s.RunID, &s.PlayerID, &s.Policy, &s.Matches, &s.Elapsed, &s.Ballcam,
			&s.Swaps, &percent, &s.SwapsPerMinute,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player summary: %w", err)
		}
		if percent.Valid {
			s.Percent = &percent.Float64
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player summaries: %w", err)
	}

	return summaries, nil
}

// nullFloat and nullInt scan LEFT JOIN columns that may be NULL into zero
// values.
type nullFloat struct{ dst *float64 }

func (n nullFloat) Scan(src interface{}) error {
	var v sql.NullFloat64
	if err := v.Scan(src); err != nil {
		return err
	}
	*n.dst = v.Float64
	return nil
}

type nullInt struct{ dst *int }

func (n nullInt) Scan(src interface{}) error {
	var v sql.NullInt64
	if err := v.Scan(src); err != nil {
		return err
	}
	*n.dst = int(v.Int64)
	return nil
}
