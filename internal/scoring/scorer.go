package scoring

import (
	"context"
	"fmt"
	"sort"

	"ballcam-analyzer/internal/db"
	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/report"
)

// Scorer computes per-player career summaries from stored match results.
type Scorer struct {
	writer *db.Writer
}

// NewScorer creates a new scorer.
func NewScorer(writer *db.Writer) *Scorer {
	return &Scorer{writer: writer}
}

// ComputeSummaries aggregates every match of a run and stores one summary
// per player and policy.
func (s *Scorer) ComputeSummaries(ctx context.Context, runID string, reader *db.Reader) error {
	matches, err := reader.GetMatches(ctx, db.MatchQuery{RunID: runID})
	if err != nil {
		return fmt.Errorf("failed to get matches: %w", err)
	}

	for _, policy := range extractors.Policies {
		for _, summary := range Summarize(matches, policy) {
			summary.RunID = runID
			if err := s.writer.InsertPlayerSummary(ctx, summary); err != nil {
				return fmt.Errorf("failed to insert summary for player %s: %w", summary.PlayerID, err)
			}
		}
	}

	return nil
}

type playerAggregate struct {
	playerID string
	matches  int
	elapsed  float64
	ballcam  float64
	swaps    int
}

// Summarize totals each player's bucket for policy across matches. Players are
// sorted by id.
func Summarize(matches []report.Match, policy extractors.Policy) []db.PlayerSummary {
	aggs := make(map[string]*playerAggregate)

	for _, m := range matches {
		for pid, res := range m.Results {
			key := pid.String()
			if aggs[key] == nil {
				aggs[key] = &playerAggregate{playerID: key}
			}
			agg := aggs[key]
			b := res.Bucket(policy)
			agg.matches++
			agg.elapsed += b.Elapsed
			agg.ballcam += b.Ballcam
			agg.swaps += b.Swaps
		}
	}

	out := make([]db.PlayerSummary, 0, len(aggs))
	for _, agg := range aggs {
		summary := db.PlayerSummary{
			PlayerID:       agg.playerID,
			Policy:         policy.String(),
			Matches:        agg.matches,
			Elapsed:        agg.elapsed,
			Ballcam:        agg.ballcam,
			Swaps:          agg.swaps,
			SwapsPerMinute: swapRate(agg),
		}
		if agg.elapsed > 0 {
			pct := 100 * agg.ballcam / agg.elapsed
			summary.Percent = &pct
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].PlayerID < out[b].PlayerID })
	return out
}

// swapRate is camera toggles per minute of counted time.
func swapRate(agg *playerAggregate) float64 {
	if agg.elapsed <= 0 {
		return 0
	}
	return float64(agg.swaps) / (agg.elapsed / 60)
}
