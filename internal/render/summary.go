package render

import (
	"fmt"
	"io"

	"github.com/ppiankov/docucheck/internal/model"
)

// PrintSummary writes a terminal summary of the report
func PrintSummary(w io.Writer, report *model.Report) {
	fmt.Fprintln(w)
	if report.Source != "" {
		fmt.Fprintf(w, "Document: %s\n", report.Source)
	}
	fmt.Fprintf(w, "Model: %s\n", report.Model)
	fmt.Fprintf(w, "Score: %d/100 (%s) - %d/%d passed, average confidence %d%%\n",
		report.Stats.Score, report.Stats.Verdict,
		report.Stats.Passed, report.Stats.Total,
		report.Stats.AverageConfidence,
	)
	if report.Truncated {
		fmt.Fprintln(w, "Note: document text was truncated before analysis")
	}
	if report.Stats.Coerced > 0 {
		fmt.Fprintf(w, "Note: %d judgment(s) did not match the reply format and were read with defaults\n", report.Stats.Coerced)
	}
	fmt.Fprintln(w)

	for i, r := range report.Results {
		mark := "✗ FAIL"
		if r.Passed() {
			mark = "✓ PASS"
		}
		fmt.Fprintf(w, "%d. %s [%d%%] %s\n", i+1, mark, r.Confidence, r.Rule)
		fmt.Fprintf(w, "   Evidence:  %s\n", r.Evidence)
		fmt.Fprintf(w, "   Reasoning: %s\n", r.Reasoning)
	}

	if report.Summary != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Summary: %s\n", report.Summary)
	}
}
