package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/report"
)

// JSONBucket is one policy's totals in the JSON export.
type JSONBucket struct {
	Elapsed float64  `json:"Elapsed"`
	Ballcam float64  `json:"Ballcam"`
	Swaps   int      `json:"Swaps"`
	Percent *float64 `json:"Percent"`
}

// JSONResult is one player in one match.
type JSONResult struct {
	Path           string     `json:"Path"`
	Date           string     `json:"Date"`
	Playlist       string     `json:"Playlist"`
	PlayerID       string     `json:"PlayerID"`
	Ping           *int       `json:"Ping,omitempty"`
	All            JSONBucket `json:"All"`
	FreezeExcluded JSONBucket `json:"FreezeExcluded"`
	ActiveOnly     JSONBucket `json:"ActiveOnly"`
}

func jsonBucket(b extractors.Bucket) JSONBucket {
	out := JSONBucket{Elapsed: b.Elapsed, Ballcam: b.Ballcam, Swaps: b.Swaps}
	if p := b.Percent(); !math.IsNaN(p) {
		out.Percent = &p
	}
	return out
}

// flattenResults turns matches into rows sorted by date, path, then player.
func flattenResults(matches []report.Match) []JSONResult {
	var rows []JSONResult
	for _, m := range matches {
		for pid, r := range m.Results {
			rows = append(rows, JSONResult{
				Path:           m.Path,
				Date:           m.Meta.Date.Format(replay.DateLayout),
				Playlist:       m.Meta.Playlist,
				PlayerID:       pid.String(),
				Ping:           r.Ping,
				All:            jsonBucket(r.All),
				FreezeExcluded: jsonBucket(r.FreezeExcluded),
				ActiveOnly:     jsonBucket(r.ActiveOnly),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].Path != rows[j].Path {
			return rows[i].Path < rows[j].Path
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	return rows
}

// writeResultsJSON writes the rows as a JSON array, one row per line.
func writeResultsJSON(path string, matches []report.Match) error {
	rows := flattenResults(matches)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := w.WriteString("[\n"); err != nil {
		return err
	}
	for i, row := range rows {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		line := "  " + string(rowJSON)
		if i < len(rows)-1 {
			line += ","
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("]\n"); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
