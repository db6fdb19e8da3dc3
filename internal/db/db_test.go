package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/report"
)

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(t.Context(), filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func bucket(elapsed, ballcam float64, swaps int) extractors.Bucket {
	return extractors.Bucket{Elapsed: elapsed, Ballcam: ballcam, Swaps: swaps}
}

func TestOpenMigrates(t *testing.T) {
	conn := openTemp(t)

	version, dirty, err := SchemaVersion(conn)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 2, version)

	// Opening again is a no-op migration.
	path := filepath.Join(t.TempDir(), "twice.db")
	first, err := Open(t.Context(), path)
	require.NoError(t, err)
	first.Close()
	second, err := Open(t.Context(), path)
	require.NoError(t, err)
	second.Close()
}

func TestSaveAndLoadMatches(t *testing.T) {
	conn := openTemp(t)
	w, r := NewWriter(conn), NewReader(conn)
	ctx := t.Context()

	runID, err := w.InsertRun(ctx, Run{ReplayDir: "/replays", Debounce: 1e-5})
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	require.NoError(t, err)

	ping := 32
	me := replay.PlayerID{Platform: "xbox", ID: "0102030405060708", Local: 0}
	other := replay.PlayerID{Platform: "steam", ID: "76561198000000001"}
	later := report.Match{
		Path: "b.replay",
		Meta: replay.Metadata{Date: time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC), PlayerName: "rocket", Playlist: "TAGame.Replay_Soccar_TA-2"},
		Results: map[replay.PlayerID]extractors.PlayerResult{
			me:    {All: bucket(300, 120, 14), FreezeExcluded: bucket(280, 110, 12), ActiveOnly: bucket(250, 100, 10), Ping: &ping},
			other: {All: bucket(300, 0, 0), FreezeExcluded: bucket(280, 0, 0), ActiveOnly: bucket(250, 0, 0)},
		},
	}
	earlier := report.Match{
		Path:    "a.replay",
		Meta:    replay.Metadata{Date: time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC), Playlist: "TAGame.Replay_Soccar_TA-1"},
		Results: map[replay.PlayerID]extractors.PlayerResult{},
	}

	_, err = w.SaveMatch(ctx, runID, later)
	require.NoError(t, err)
	_, err = w.SaveMatch(ctx, runID, earlier)
	require.NoError(t, err)
	require.NoError(t, w.InsertFailure(ctx, runID, "c.replay", errors.New("missing Date")))
	require.NoError(t, w.SetMeta(ctx, "version", "1"))

	n, err := r.CountReplays(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := r.GetMatches(ctx, MatchQuery{RunID: runID})
	require.NoError(t, err)
	want := []report.Match{earlier, later}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetMatches mismatch (-want +got):\n%s", diff)
	}

	since, err := r.GetMatches(ctx, MatchQuery{Since: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "b.replay", since[0].Path)

	byPlaylist, err := r.GetMatches(ctx, MatchQuery{Playlist: "TAGame.Replay_Soccar_TA-1"})
	require.NoError(t, err)
	require.Len(t, byPlaylist, 1)
	assert.Empty(t, byPlaylist[0].Results)

	failures, err := r.GetFailures(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c.replay": "missing Date"}, failures)

	latest, err := r.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID, latest)
}

func TestPlayerSummaries(t *testing.T) {
	conn := openTemp(t)
	w, r := NewWriter(conn), NewReader(conn)
	ctx := t.Context()

	runID, err := w.InsertRun(ctx, Run{Debounce: 1e-5})
	require.NoError(t, err)

	pct := 40.0
	require.NoError(t, w.InsertPlayerSummary(ctx, PlayerSummary{RunID: runID, PlayerID: "steam-1-0", Policy: "all", Matches: 2, Elapsed: 100, Ballcam: 40, Swaps: 5, Percent: &pct, SwapsPerMinute: 3}))
	require.NoError(t, w.InsertPlayerSummary(ctx, PlayerSummary{RunID: runID, PlayerID: "steam-2-0", Policy: "all", Matches: 1}))

	got, err := r.GetPlayerSummaries(ctx, runID, "all")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "steam-1-0", got[0].PlayerID)
	require.NotNil(t, got[0].Percent)
	assert.InDelta(t, 40, *got[0].Percent, 1e-9)
	assert.Nil(t, got[1].Percent)

	latest, err := r.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID, latest)
}

func TestLatestRunEmpty(t *testing.T) {
	r := NewReader(openTemp(t))
	id, err := r.LatestRun(t.Context())
	require.NoError(t, err)
	assert.Empty(t, id)
}
