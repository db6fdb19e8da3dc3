package main

import (
	"github.com/spf13/cobra"

	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/replay"
)

func newDumpCmd(a *app) *cobra.Command {
	var (
		object   string
		rrrocket string
	)

	cmd := &cobra.Command{
		Use:   "dump <replay>",
		Short: "Print the lifetimes that touch an object",
		Long: "Dump reconstructs actor lifetimes and prints every event of each lifetime that " +
			"creates or updates the given object, for debugging attribution.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("rrrocket") {
				rrrocket = a.cfg.RrrocketPath
			}
			rep, err := replay.Load(cmd.Context(), args[0], rrrocket)
			if err != nil {
				return err
			}
			list := lifetime.Build(rep.Frames)
			n, err := lifetime.DumpLifetimes(cmd.OutOrStdout(), rep, list, object)
			if err != nil {
				return err
			}
			a.out.Infof("Dumped %d of %d lifetimes", n, list.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&object, "object", replay.ObjBallcam, "object or attribute name to select lifetimes by")
	cmd.Flags().StringVar(&rrrocket, "rrrocket", "", "rrrocket binary used for .replay files (default $RRROCKET_PATH)")

	return cmd
}
