package cli

import (
	"fmt"
	"io"

	"despesas/internal/service"
)

func printSummary(w io.Writer, s service.Summary) {
	for _, r := range s.Results {
		line := fmt.Sprintf("%-32s %-12s upstream=%-6d written=%-6d skipped=%-6d", r.Period, r.State, r.Upstream, r.Written, r.Skipped)
		if r.FailedBatches > 0 {
			line += fmt.Sprintf(" failed_batches=%d", r.FailedBatches)
		}
		if r.Err != nil {
			line += " error=" + r.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "run %s: periods=%d done=%d empty=%d fetch_failed=%d skipped_periods=%d written=%d skipped=%d mismatches=%d scanned=%d recategorized=%d\n",
		s.RunID, s.Periods, s.Done, s.Empty, s.FetchFailed, s.SkippedPeriods,
		s.Written, s.Skipped, s.Mismatches, s.Scanned, s.Recategorized)
}
