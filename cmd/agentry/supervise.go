package main

import (
	"time"

	"github.com/aretw0/agentry/internal/cli"
	"github.com/spf13/cobra"
)

var superviseCmd = &cobra.Command{
	Use:   "supervise",
	Short: "Run a supervisor that restarts its workers",
	Long:  `Starts a supervisor keeping a fixed number of offloaded workers alive, restarting each one that finishes until the restart budget is spent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetInt("width")
		restarts, _ := cmd.Flags().GetInt("restarts")
		work, _ := cmd.Flags().GetDuration("work")

		rt, _, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		ctx, stop := cli.SignalContext(cmd.Context())
		defer stop()

		res, err := cli.Supervise(ctx, rt, width, restarts, work)
		if err != nil {
			return err
		}
		return printReport(cmd, res.Started == res.Finished && res.Tracked == 0, cli.SuperviseReport(res))
	},
}

func init() {
	rootCmd.AddCommand(superviseCmd)
	superviseCmd.Flags().Int("width", 4, "Workers kept alive concurrently")
	superviseCmd.Flags().Int("restarts", 20, "Worker terminations before shutting down")
	superviseCmd.Flags().Duration("work", 20*time.Millisecond, "Simulated work per worker")
}
