package bench

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// PrintReport renders a Report as a colorized summary table plus a
// pass/fail line per gate, the way an operator reads a benchmark run at
// the terminal.
func PrintReport(w io.Writer, rep Report) {
	fmt.Fprintln(w, color.New(color.FgCyan, color.Bold).Sprint("=== txbench report ==="))

	var table = tablewriter.NewTable(w)
	table.Header([]string{"Metric", "Value"})
	rows := [][]string{
		{"Total attempted", humanize.Comma(rep.TotalAttempted)},
		{"Total successful", humanize.Comma(rep.TotalSuccessful)},
		{"Total failed", humanize.Comma(rep.TotalFailed)},
		{"Success rate", fmt.Sprintf("%.2f%%", rep.SuccessRatePct)},
		{"Throughput", fmt.Sprintf("%.1f tx/s", rep.TPS)},
		{"Avg latency", fmt.Sprintf("%.2f ms", rep.AvgMs)},
		{"p50 latency", fmt.Sprintf("%.2f ms", rep.P50Ms)},
		{"p95 latency", fmt.Sprintf("%.2f ms", rep.P95Ms)},
		{"p99 latency", fmt.Sprintf("%.2f ms", rep.P99Ms)},
		{"p99.5 latency", fmt.Sprintf("%.2f ms", rep.P995Ms)},
		{"p99.9 latency", fmt.Sprintf("%.2f ms", rep.P999Ms)},
		{"Min / Max latency", fmt.Sprintf("%.2f ms / %.2f ms", rep.MinMs, rep.MaxMs)},
		{"Round conflicts resolved", humanize.Comma(rep.ConflictsResolved)},
		{"Index conflicts resolved", humanize.Comma(rep.IndexConflictsResolved)},
		{"Total retries", humanize.Comma(rep.TotalRetries)},
		{"Index orphan count", humanize.Comma(rep.IndexOrphanCount)},
	}
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	printGate(w, "100% success rate", rep.Meets100PctSuccess)
	printGate(w, "avg response <= 20ms", rep.Meets20msResponse)
	if rep.ReaderBenchmarked {
		printGate(w, "p95 read <= 50ms", rep.Meets50msRead)
	}
	if rep.IndexVariant {
		printGate(w, "index consistency verified", rep.IndexConsistencyVerified)
		for _, m := range rep.ConsistencyMismatches {
			fmt.Fprintln(w, color.RedString("  mismatch roundId=%s refs=%d detailsFound=%d delta=%d",
				m.RoundID, m.RefsCount, m.DetailsFound, m.RefsCount-m.DetailsFound))
		}
	}
}

func printGate(w io.Writer, label string, pass bool) {
	if pass {
		fmt.Fprintln(w, color.GreenString("PASS "+label))
	} else {
		fmt.Fprintln(w, color.RedString("FAIL "+label))
	}
}
