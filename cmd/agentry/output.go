package main

import (
	"fmt"
	"os"

	"github.com/aretw0/agentry/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// printReport renders a markdown report to stdout, with the banner unless --quiet.
func printReport(cmd *cobra.Command, ok bool, markdown string) error {
	out := os.Stdout
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		tui.PrintBanner(out)
	}

	rendered, err := tui.NewRenderer(out)(markdown)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Fprint(out, rendered)

	label := "OK"
	if !ok {
		label = "FAILED"
	}
	fmt.Fprintln(out, tui.Status(out, ok, label))
	return nil
}
