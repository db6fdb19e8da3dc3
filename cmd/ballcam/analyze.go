package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ballcam-analyzer/internal/batch"
	"ballcam-analyzer/internal/chart"
	"ballcam-analyzer/internal/db"
	"ballcam-analyzer/internal/ipc"
	"ballcam-analyzer/internal/metrics"
	"ballcam-analyzer/internal/parser"
	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/report"
	"ballcam-analyzer/internal/scoring"
)

type analyzeOptions struct {
	dbPath          string
	jsonPath        string
	metricsTextfile string
	charts          bool
	workers         int
	debounce        float64
	rrrocket        string
	policy          string
	memoryEvery     int
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var o analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [files or directories...]",
		Short: "Analyze replays and report ballcam usage per player",
		Long: "Analyze decodes every replay (.replay through rrrocket, .json or .json.zst), scores " +
			"each player's ballcam usage and prints a per-player summary. Without arguments the " +
			"REPLAY_DIR directory is scanned.",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("db") {
				o.dbPath = a.cfg.DBPath
			}
			if !flags.Changed("workers") {
				o.workers = a.cfg.Workers
			}
			if !flags.Changed("debounce") {
				o.debounce = a.cfg.Debounce
			}
			if !flags.Changed("rrrocket") {
				o.rrrocket = a.cfg.RrrocketPath
			}
			if len(args) == 0 {
				args = []string{a.cfg.ReplayDir}
			}
			return runAnalyze(cmd.Context(), cmd, a, o, args)
		},
	}

	cmd.Flags().StringVar(&o.dbPath, "db", "", "SQLite database to store results in (default $DB_PATH)")
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "write per-player results to this JSON file")
	cmd.Flags().StringVar(&o.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this textfile")
	cmd.Flags().BoolVar(&o.charts, "charts", false, "render charts for TARGET_PLAYER into OUTPUT_DIR")
	cmd.Flags().IntVarP(&o.workers, "workers", "j", 0, "number of replays analyzed concurrently, 0 for one per CPU (default $WORKERS)")
	cmd.Flags().Float64Var(&o.debounce, "debounce", 0, "minimum seconds between toggles for a swap to count, 0 counts every toggle (default $DEBOUNCE_THRESHOLD)")
	cmd.Flags().StringVar(&o.rrrocket, "rrrocket", "", "rrrocket binary used for .replay files (default $RRROCKET_PATH)")
	cmd.Flags().StringVar(&o.policy, "policy", extractors.PolicyActiveOnly.String(), "policy used for the summary table and charts")
	cmd.Flags().IntVar(&o.memoryEvery, "memory-every", 50, "log heap statistics every N replays (0 disables)")

	return cmd
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, a *app, o analyzeOptions, inputs []string) error {
	out := a.out
	policy, err := extractors.ParsePolicy(o.policy)
	if err != nil {
		return err
	}
	if o.debounce < 0 {
		return fmt.Errorf("--debounce must not be negative, got %g", o.debounce)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}

	paths, err := batch.ExpandInputs(inputs)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no replays found in %v", inputs)
	}
	out.Infof("Analyzing %s replays with %d workers", humanize.Comma(int64(len(paths))), o.workers)

	m := metrics.New()
	mem := NewMemoryLogger(out, o.memoryEvery)
	var done atomic.Int64

	start := time.Now()
	results, runErr := batch.Analyze(ctx, paths, o.workers, parser.Options{
		RrrocketPath: o.rrrocket,
		Debounce:     &o.debounce,
	}, func(i int, r batch.FileResult) {
		players, skipped := 0, 0
		if r.Err == nil {
			players, skipped = len(r.Value.Results), len(r.Value.Skipped)
			for _, s := range r.Value.Skipped {
				out.Debugf("%s: camera lifetime %d skipped: %s", filepath.Base(r.Path), s.Lifetime, s.Reason)
			}
		}
		m.ObserveReplay(r.Duration, players, skipped, r.Err)
		out.Result(r.Path, players, r.Duration, r.Err)

		n := int(done.Add(1))
		out.Progress("analyze", n, len(paths), filepath.Base(r.Path))
		mem.LogIfNeeded(n)
	})

	var (
		matches  []report.Match
		failures int
	)
	for _, r := range results {
		if r.Err != nil {
			failures++
			continue
		}
		matches = append(matches, report.FromMatchData(r.Value))
	}
	report.SortByDate(matches)
	out.Infof("Analyzed %d of %d replays in %s (%d failed)",
		len(matches), len(paths), time.Since(start).Round(time.Millisecond), failures)

	if errors.Is(runErr, context.Canceled) {
		out.Warnf("Interrupted: %d replays were not started", len(paths)-int(done.Load()))
	}

	if o.dbPath != "" {
		if err := storeRun(ctx, a, o, results, matches); err != nil {
			return err
		}
	}
	if o.jsonPath != "" {
		if err := writeResultsJSON(o.jsonPath, matches); err != nil {
			return err
		}
		out.Infof("Wrote results to %s", o.jsonPath)
	}
	if o.metricsTextfile != "" {
		if err := m.WriteTextfile(o.metricsTextfile); err != nil {
			return err
		}
	}
	if o.charts {
		if err := renderCharts(out, a.cfg.TargetPlayer, matches, policy, defaultSince, false, report.DefaultWindow, a.cfg.OutputDir); err != nil {
			return err
		}
	}

	if !a.ndjson {
		if err := printSummaries(cmd.OutOrStdout(), scoring.Summarize(matches, policy)); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if len(matches) == 0 {
		return errors.New("no replay could be analyzed")
	}
	return nil
}

// storeRun persists the run, its matches and failures, then the per-player
// summaries.
func storeRun(ctx context.Context, a *app, o analyzeOptions, results []batch.FileResult, matches []report.Match) error {
	// Storing uses a fresh context so an interrupted run still saves what
	// finished.
	ctx = context.WithoutCancel(ctx)

	conn, err := db.Open(ctx, o.dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	w := db.NewWriter(conn)
	runID, err := w.InsertRun(ctx, db.Run{ReplayDir: a.cfg.ReplayDir, Debounce: o.debounce})
	if err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := w.SaveMatch(ctx, runID, m); err != nil {
			return fmt.Errorf("failed to store %s: %w", m.Path, err)
		}
	}
	for _, r := range results {
		if r.Err != nil {
			if err := w.InsertFailure(ctx, runID, r.Path, r.Err); err != nil {
				return err
			}
		}
	}
	if err := scoring.NewScorer(w).ComputeSummaries(ctx, runID, db.NewReader(conn)); err != nil {
		return err
	}
	if err := w.SetMeta(ctx, "last_run", runID); err != nil {
		return err
	}
	a.out.Infof("Stored run %s in %s (%s)", runID, o.dbPath, dbSize(conn))
	return nil
}

func dbSize(conn *sql.DB) string {
	var pages, pageSize int64
	if err := conn.QueryRow("PRAGMA page_count").Scan(&pages); err != nil {
		return "size unknown"
	}
	if err := conn.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return "size unknown"
	}
	return humanize.Bytes(uint64(pages * pageSize))
}

// renderCharts writes the standard chart set for the configured target.
func renderCharts(out *ipc.Output, targetID string, matches []report.Match, policy extractors.Policy, since time.Time, dedupe bool, window int, dir string) error {
	if targetID == "" {
		return errors.New("charts need a target player: set TARGET_PLAYER")
	}
	target, err := replay.ParsePlayerID(targetID)
	if err != nil {
		return err
	}

	cs := report.Charts(matches, target, policy, since, dedupe)
	written, err := chart.RenderAll(cs, chart.Options{SelfLabel: target.String(), Window: window}, dir)
	if err != nil {
		return err
	}
	out.Infof("Rendered %d chart files into %s", len(written), dir)
	return nil
}

func printSummaries(w io.Writer, summaries []db.PlayerSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tMATCHES\tTIME\tBALLCAM\tSWAPS/MIN")
	for _, s := range summaries {
		pct := "-"
		if s.Percent != nil {
			pct = fmt.Sprintf("%.1f%%", *s.Percent)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.2f\n",
			s.PlayerID, s.Matches, time.Duration(s.Elapsed*float64(time.Second)).Round(time.Second), pct, s.SwapsPerMinute)
	}
	return tw.Flush()
}
