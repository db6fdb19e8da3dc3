package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ballcam-analyzer/internal/batch"
	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
)

func newReservationsCmd(a *app) *cobra.Command {
	var (
		workers  int
		rrrocket string
	)

	cmd := &cobra.Command{
		Use:   "reservations [files or directories...]",
		Short: "Histogram of reservation status transitions",
		Long: "Reservations counts how players' reservation status pairs change across replays: " +
			"first sightings are reported as transitions from none.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}
			if !cmd.Flags().Changed("rrrocket") {
				rrrocket = a.cfg.RrrocketPath
			}
			if len(args) == 0 {
				args = []string{a.cfg.ReplayDir}
			}

			paths, err := batch.ExpandInputs(args)
			if err != nil {
				return err
			}

			results, runErr := batch.Map(cmd.Context(), paths, workers, func(ctx context.Context, path string) (extractors.TransitionCounts, error) {
				rep, err := replay.Load(ctx, path, rrrocket)
				if err != nil {
					return nil, err
				}
				ex := extractors.NewReservationStatsExtractor()
				if err := ex.Extract(rep); err != nil {
					return nil, err
				}
				return ex.GetCounts(), nil
			}, func(_ int, r batch.Result[extractors.TransitionCounts]) {
				if r.Err != nil {
					a.out.Warnf("%s: %v", r.Path, r.Err)
				}
			})

			total := make(extractors.TransitionCounts)
			for _, counts := range batch.Succeeded(results) {
				total.Add(counts)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TRANSITION\tCOUNT")
			for _, row := range total.Sorted() {
				fmt.Fprintf(tw, "%s\t%s\n", row.Transition, humanize.Comma(row.Count))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "number of replays read concurrently (default $WORKERS)")
	cmd.Flags().StringVar(&rrrocket, "rrrocket", "", "rrrocket binary used for .replay files (default $RRROCKET_PATH)")

	return cmd
}
