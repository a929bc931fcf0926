package main

import (
	"time"

	"github.com/aretw0/agentry/internal/cli"
	"github.com/spf13/cobra"
)

var routineCmd = &cobra.Command{
	Use:   "routine",
	Short: "Run a time-limited probe routine with backoff",
	Long:  `Polls a simulated target that becomes ready after a number of attempts, spacing failures with exponential backoff, bounded by a time limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		readyAfter, _ := cmd.Flags().GetInt("ready-after")
		limit, _ := cmd.Flags().GetDuration("time-limit")

		rt, cfg, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("time-limit") && cfg.Routine.TimeLimit > 0 {
			limit = cfg.Routine.TimeLimit
		}
		ctx, stop := cli.SignalContext(cmd.Context())
		defer stop()

		res := cli.Probe(ctx, rt, readyAfter, limit)
		if sig := cli.Signal(ctx); sig != nil {
			rt.Logger().Info("probe interrupted", "signal", sig)
		}
		return printReport(cmd, res.Err == nil, cli.ProbeReport(res))
	},
}

func init() {
	rootCmd.AddCommand(routineCmd)
	routineCmd.Flags().Int("ready-after", 5, "Attempt at which the target becomes ready")
	routineCmd.Flags().Duration("time-limit", 3*time.Second, "Time limit of the routine")
}
