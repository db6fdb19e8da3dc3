package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"ballcam-analyzer/internal/config"
	"ballcam-analyzer/internal/ipc"
)

const appName = "ballcam"

// app is the state shared by every subcommand.
type app struct {
	cfg     config.Config
	out     *ipc.Output
	envFile string
	verbose bool
	ndjson  bool
}

// logWriter is where NDJSON logs go: stdout when asked for machine output,
// stderr otherwise so tables on stdout stay clean.
func (a *app) logWriter(cmd *cobra.Command) io.Writer {
	if a.ndjson {
		return cmd.OutOrStdout()
	}
	return cmd.ErrOrStderr()
}

func newRootCmd(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Ballcam usage statistics from Rocket League replays",
		Long:          "ballcam measures how much each player uses ball camera over a collection of replays and plots it over time.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := ipc.LevelInfo
			if a.verbose {
				level = ipc.LevelDebug
			}
			a.out = ipc.NewOutput(a.logWriter(cmd), level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(appName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&a.envFile, "env", ".env", "dotenv file with default settings")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	cmd.PersistentFlags().BoolVar(&a.ndjson, "ndjson", false, "write NDJSON logs to stdout instead of stderr")

	cmd.AddCommand(
		newAnalyzeCmd(a),
		newReportCmd(a),
		newReservationsCmd(a),
		newDumpCmd(a),
	)

	return cmd
}
