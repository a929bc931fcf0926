package cli

import (
	"fmt"
	"strings"
	"time"
)

// BenchReport renders bench results as a markdown table.
func BenchReport(n int, results []BenchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Counting to %d\n\n", n)
	b.WriteString("| Style | Count | Elapsed | Per step |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for _, r := range results {
		per := time.Duration(0)
		if r.Count > 0 {
			per = r.Elapsed / time.Duration(r.Count)
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s |\n", r.Style, r.Count, r.Elapsed.Round(time.Microsecond), per)
	}
	return b.String()
}

// SuperviseReport renders a supervision run as markdown.
func SuperviseReport(r SuperviseResult) string {
	var b strings.Builder
	b.WriteString("## Supervision\n\n")
	fmt.Fprintf(&b, "- workers started: **%d**\n", r.Started)
	fmt.Fprintf(&b, "- workers finished: **%d**\n", r.Finished)
	fmt.Fprintf(&b, "- still tracked at finalize: **%d**\n", r.Tracked)
	fmt.Fprintf(&b, "- elapsed: %s\n", r.Elapsed.Round(time.Millisecond))
	return b.String()
}

// ProbeReport renders a probe run as markdown.
func ProbeReport(r ProbeResult) string {
	var b strings.Builder
	b.WriteString("## Probe routine\n\n")
	outcome := r.Output
	if r.Err != nil {
		outcome = "error: " + r.Err.Error()
	}
	fmt.Fprintf(&b, "- outcome: `%s`\n", outcome)
	fmt.Fprintf(&b, "- attempts: %d (%d recorded failures)\n", r.Attempts, r.Failures)
	fmt.Fprintf(&b, "- elapsed: %s\n", r.Elapsed.Round(time.Millisecond))
	return b.String()
}
