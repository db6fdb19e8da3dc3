package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ballcam-analyzer/internal/db"
	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/report"
)

// defaultSince is the cutoff of the dated charts.
var defaultSince = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

type reportOptions struct {
	dbPath  string
	runID   string
	allRuns bool
	target  string
	policy  string
	since   string
	dedupe  bool
	window  int
	outDir  string
}

func newReportCmd(a *app) *cobra.Command {
	var o reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render ballcam charts from stored results",
		Long: "Report loads the matches of a stored run (the latest one by default) and renders " +
			"the target player's ballcam percentage against everybody else, for all matches, " +
			"matches since a cutoff date, and per playlist.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("db") {
				o.dbPath = a.cfg.DBPath
			}
			if !flags.Changed("target") {
				o.target = a.cfg.TargetPlayer
			}
			if !flags.Changed("out") {
				o.outDir = a.cfg.OutputDir
			}
			return runReport(cmd, a, o)
		},
	}

	cmd.Flags().StringVar(&o.dbPath, "db", "", "SQLite database written by analyze (default $DB_PATH)")
	cmd.Flags().StringVar(&o.runID, "run", "", "run id to report on (default: latest run)")
	cmd.Flags().BoolVar(&o.allRuns, "all-runs", false, "report on the matches of every stored run")
	cmd.Flags().StringVar(&o.target, "target", "", "player plotted as self, e.g. steam-76561198000000000-0 (default $TARGET_PLAYER)")
	cmd.Flags().StringVar(&o.policy, "policy", extractors.PolicyActiveOnly.String(), "time policy: all, freeze-excluded or active-only")
	cmd.Flags().StringVar(&o.since, "since", defaultSince.Format(replay.DateLayout), "cutoff date of the dated charts (empty disables them)")
	cmd.Flags().BoolVar(&o.dedupe, "dedupe", false, "average points that share a date")
	cmd.Flags().IntVar(&o.window, "window", report.DefaultWindow, "moving average window in matches (0 disables)")
	cmd.Flags().StringVar(&o.outDir, "out", "", "chart output directory (default $OUTPUT_DIR)")

	return cmd
}

func runReport(cmd *cobra.Command, a *app, o reportOptions) error {
	ctx := cmd.Context()
	if o.dbPath == "" {
		return fmt.Errorf("--db or DB_PATH is required")
	}
	policy, err := extractors.ParsePolicy(o.policy)
	if err != nil {
		return err
	}
	var since time.Time
	if o.since != "" {
		since, err = time.Parse(replay.DateLayout, o.since)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
	}

	conn, err := db.Open(ctx, o.dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()
	r := db.NewReader(conn)

	runID := o.runID
	if runID == "" && !o.allRuns {
		runID, err = r.LatestRun(ctx)
		if err != nil {
			return err
		}
		if runID == "" {
			return fmt.Errorf("no runs stored in %s", o.dbPath)
		}
	}
	if o.allRuns {
		runID = ""
	}

	matches, err := r.GetMatches(ctx, db.MatchQuery{RunID: runID})
	if err != nil {
		return err
	}
	a.out.Infof("Loaded %d matches", len(matches))

	if runID != "" {
		summaries, err := r.GetPlayerSummaries(ctx, runID, policy.String())
		if err != nil {
			return err
		}
		if !a.ndjson {
			if err := printSummaries(cmd.OutOrStdout(), summaries); err != nil {
				return err
			}
		}
	}

	return renderCharts(a.out, o.target, matches, policy, since, o.dedupe, o.window, o.outDir)
}
