package report

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
)

var (
	me    = replay.PlayerID{Platform: "steam", ID: "1"}
	mate  = replay.PlayerID{Platform: "steam", ID: "2"}
	enemy = replay.PlayerID{Platform: "epic", ID: "abc"}
)

func day(d int) time.Time {
	return time.Date(2023, time.January, d, 0, 0, 0, 0, time.UTC)
}

func result(elapsed, ballcam float64) extractors.PlayerResult {
	b := extractors.Bucket{Elapsed: elapsed, Ballcam: ballcam}
	return extractors.PlayerResult{All: b, FreezeExcluded: b, ActiveOnly: b}
}

func match(d int, playlist string, results map[replay.PlayerID]extractors.PlayerResult) Match {
	return Match{
		Path:    "m" + playlist,
		Meta:    replay.Metadata{Date: day(d), Playlist: playlist},
		Results: results,
	}
}

func TestSortAndFilter(t *testing.T) {
	ms := []Match{
		match(5, "TAGame.Replay_Soccar_TA-2", nil),
		match(1, "TAGame.Replay_Soccar_TA-3", nil),
		match(5, "TAGame.Replay_Soccar_TA-1", nil),
	}
	SortByDate(ms)

	assert.Equal(t, day(1), ms[0].Meta.Date)
	// Same day keeps input order.
	assert.Equal(t, "TAGame.Replay_Soccar_TA-2", ms[1].Meta.Playlist)
	assert.Equal(t, "TAGame.Replay_Soccar_TA-1", ms[2].Meta.Playlist)

	assert.Len(t, FilterSince(ms, day(5)), 2)
	assert.Len(t, FilterSince(ms, day(6)), 0)
	assert.Len(t, FilterPlaylist(ms, "TAGame.Replay_Soccar_TA-3"), 1)
	assert.Equal(t, []string{
		"TAGame.Replay_Soccar_TA-1",
		"TAGame.Replay_Soccar_TA-2",
		"TAGame.Replay_Soccar_TA-3",
	}, Playlists(ms))
}

func TestSeries(t *testing.T) {
	ms := []Match{
		match(1, "p", map[replay.PlayerID]extractors.PlayerResult{
			me:    result(10, 5),
			mate:  result(10, 2),
			enemy: result(30, 18),
		}),
		// Target absent.
		match(2, "p", map[replay.PlayerID]extractors.PlayerResult{
			mate: result(10, 10),
		}),
		// Nothing counted for anybody.
		match(3, "p", map[replay.PlayerID]extractors.PlayerResult{
			me:   result(0, 0),
			mate: result(0, 0),
		}),
	}

	got := Series(ms, me, extractors.PolicyActiveOnly)
	want := SeriesSet{
		Self:   []Point{{day(1), 50}},
		Others: []Point{{day(1), 50}, {day(2), 100}},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Series mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupeByDate(t *testing.T) {
	pts := []Point{{day(1), 10}, {day(1), 20}, {day(2), 5}, {day(3), 1}, {day(3), 2}, {day(3), 3}}
	got := DedupeByDate(pts)
	want := []Point{{day(1), 15}, {day(2), 5}, {day(3), 2}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("DedupeByDate mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, DedupeByDate(nil))
}

func TestMovingAverage(t *testing.T) {
	var pts []Point
	for i := 1; i <= 5; i++ {
		pts = append(pts, Point{day(i), float64(i)})
	}

	got := MovingAverage(pts, 3)
	require.Len(t, got, 3)
	assert.Equal(t, day(3), got[0].Date)
	assert.InDelta(t, 2, got[0].Value, 1e-9)
	assert.InDelta(t, 4, got[2].Value, 1e-9)

	assert.Nil(t, MovingAverage(pts, 6))
	assert.Nil(t, MovingAverage(pts, 0))
	assert.Len(t, MovingAverage(pts, 1), 5)
}

func TestCharts(t *testing.T) {
	ms := []Match{
		match(10, "TAGame.Replay_Soccar_TA-2", map[replay.PlayerID]extractors.PlayerResult{
			me: result(10, 5), mate: result(10, 5),
		}),
		match(1, "TAGame.Replay_Soccar_TA-1", map[replay.PlayerID]extractors.PlayerResult{
			me: result(10, 1),
		}),
	}

	charts := Charts(ms, me, extractors.PolicyActiveOnly, day(5), false)
	var names []string
	for _, c := range charts {
		names = append(names, c.Name)
	}
	// The 1v1 match predates the cutoff so its dated chart is empty.
	assert.Equal(t, []string{
		"ballcam-active-only-full",
		"ballcam-active-only-since-2023-01-05",
		"ballcam-active-only-full-TAGame.Replay_Soccar_TA-1",
		"ballcam-active-only-full-TAGame.Replay_Soccar_TA-2",
		"ballcam-active-only-since-2023-01-05-TAGame.Replay_Soccar_TA-2",
	}, names)

	full := charts[0].Series
	require.Len(t, full.Self, 2)
	assert.Equal(t, day(1), full.Self[0].Date)

	assert.Len(t, Charts(ms, me, extractors.PolicyAll, time.Time{}, true), 3)
}
