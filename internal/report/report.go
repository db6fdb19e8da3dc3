// Package report aggregates per-match results once a batch is complete:
// ordering by date, bucketing by playlist, and building the target-vs-others
// percentage series the charts plot.
package report

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"ballcam-analyzer/internal/parser"
	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
)

// DefaultWindow is the moving average window, in matches.
const DefaultWindow = 7

// Match is one scored replay.
type Match struct {
	Path    string
	Meta    replay.Metadata
	Results map[replay.PlayerID]extractors.PlayerResult
}

// FromMatchData converts parser output.
func FromMatchData(d *parser.MatchData) Match {
	return Match{Path: d.Path, Meta: d.Meta, Results: d.Results}
}

// SortByDate orders matches by date, keeping input order within a day.
func SortByDate(ms []Match) {
	sort.SliceStable(ms, func(a, b int) bool { return ms[a].Meta.Date.Before(ms[b].Meta.Date) })
}

// FilterSince keeps the matches played on or after since.
func FilterSince(ms []Match, since time.Time) []Match {
	return filter(ms, func(m Match) bool { return !m.Meta.Date.Before(since) })
}

// FilterPlaylist keeps the matches of one playlist.
func FilterPlaylist(ms []Match, playlist string) []Match {
	return filter(ms, func(m Match) bool { return m.Meta.Playlist == playlist })
}

func filter(ms []Match, keep func(Match) bool) []Match {
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// Playlists returns the distinct playlist labels, sorted.
func Playlists(ms []Match) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range ms {
		if !seen[m.Meta.Playlist] {
			seen[m.Meta.Playlist] = true
			out = append(out, m.Meta.Playlist)
		}
	}
	sort.Strings(out)
	return out
}

// Point is one plotted value.
type Point struct {
	Date  time.Time
	Value float64
}

// SeriesSet is the pair of series a chart shows.
type SeriesSet struct {
	Self   []Point
	Others []Point
}

// Empty reports whether neither series has a point.
func (s SeriesSet) Empty() bool {
	return len(s.Self) == 0 && len(s.Others) == 0
}

// Series builds, per match, the target player's ballcam percentage and the
// pooled percentage of everyone else (total on-time over total time) under
// policy. Matches without the target only feed the others series; matches
// where no time was counted contribute no point.
func Series(ms []Match, target replay.PlayerID, policy extractors.Policy) SeriesSet {
	var out SeriesSet
	for _, m := range ms {
		var on, total float64
		for pid, res := range m.Results {
			b := res.Bucket(policy)
			if pid == target {
				if p := b.Percent(); !math.IsNaN(p) {
					out.Self = append(out.Self, Point{Date: m.Meta.Date, Value: p})
				}
				continue
			}
			on += b.Ballcam
			total += b.Elapsed
		}
		if total > 0 {
			out.Others = append(out.Others, Point{Date: m.Meta.Date, Value: 100 * on / total})
		}
	}
	return out
}

// DedupeByDate collapses points that share a date into their mean. Input must
// be date ordered.
func DedupeByDate(pts []Point) []Point {
	var (
		out  []Point
		vals []float64
	)
	flush := func(d time.Time) {
		if len(vals) > 0 {
			out = append(out, Point{Date: d, Value: stat.Mean(vals, nil)})
			vals = vals[:0]
		}
	}
	for i, p := range pts {
		if i > 0 && !p.Date.Equal(pts[i-1].Date) {
			flush(pts[i-1].Date)
		}
		vals = append(vals, p.Value)
	}
	if len(pts) > 0 {
		flush(pts[len(pts)-1].Date)
	}
	return out
}

// MovingAverage returns the trailing mean over window points, starting at the
// first point that has a full window.
func MovingAverage(pts []Point, window int) []Point {
	if window <= 0 || len(pts) < window {
		return nil
	}
	out := make([]Point, 0, len(pts)-window+1)
	vals := make([]float64, len(pts))
	for i, p := range pts {
		vals[i] = p.Value
	}
	for i := window - 1; i < len(pts); i++ {
		out = append(out, Point{Date: pts[i].Date, Value: stat.Mean(vals[i-window+1:i+1], nil)})
	}
	return out
}

// Chart is a named series set ready for rendering.
type Chart struct {
	Name   string
	Title  string
	Series SeriesSet
}

// Charts builds the standard chart set: all matches, matches since cutoff, and
// the same two for every playlist. A zero cutoff skips the dated charts.
// Empty charts are left out.
func Charts(ms []Match, target replay.PlayerID, policy extractors.Policy, cutoff time.Time, dedupe bool) []Chart {
	sorted := append([]Match(nil), ms...)
	SortByDate(sorted)

	type group struct {
		name    string
		matches []Match
	}
	groups := []group{{"full", sorted}}
	if !cutoff.IsZero() {
		groups = append(groups, group{"since-" + cutoff.Format(replay.DateLayout), FilterSince(sorted, cutoff)})
	}
	for _, pl := range Playlists(sorted) {
		byPlaylist := FilterPlaylist(sorted, pl)
		groups = append(groups, group{"full-" + pl, byPlaylist})
		if !cutoff.IsZero() {
			groups = append(groups, group{"since-" + cutoff.Format(replay.DateLayout) + "-" + pl, FilterSince(byPlaylist, cutoff)})
		}
	}

	var out []Chart
	for _, g := range groups {
		s := Series(g.matches, target, policy)
		if dedupe {
			s.Self = DedupeByDate(s.Self)
			s.Others = DedupeByDate(s.Others)
		}
		if s.Empty() {
			continue
		}
		out = append(out, Chart{
			Name:   "ballcam-" + policy.String() + "-" + g.name,
			Title:  "% ballcam (" + policy.String() + ") - " + g.name,
			Series: s,
		})
	}
	return out
}
