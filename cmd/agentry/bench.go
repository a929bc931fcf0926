package main

import (
	"github.com/aretw0/agentry/internal/cli"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Count with a state machine and with a mailbox unit",
	Long:  `Runs the same counter as a chain of cooperative states and as a mailbox actor, concurrently, and reports both timings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")

		rt, _, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		ctx, stop := cli.SignalContext(cmd.Context())
		defer stop()

		results, err := cli.Bench(ctx, rt, n)
		if err != nil {
			return err
		}
		ok := true
		for _, r := range results {
			ok = ok && r.Count == n
		}
		return printReport(cmd, ok, cli.BenchReport(n, results))
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntP("count", "n", 100_000, "Value to count to")
}
