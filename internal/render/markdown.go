package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/ppiankov/docucheck/internal/model"
)

// WriteMarkdown writes the report in Markdown format
func WriteMarkdown(w io.Writer, report *model.Report, includeFooter bool) error {
	md := markdown.NewMarkdown(w)

	md.H1("Document Compliance Report")
	md.PlainText("")

	source := report.Source
	if source == "" {
		source = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Document", source},
			{"Model", "`" + report.Model + "`"},
			{"Checked", report.CheckedAt.Format("2006-01-02 15:04:05 MST")},
			{"Score", strconv.Itoa(report.Stats.Score) + "/100"},
			{"Passed", strconv.Itoa(report.Stats.Passed) + " of " + strconv.Itoa(report.Stats.Total)},
			{"Average Confidence", strconv.Itoa(report.Stats.AverageConfidence) + "%"},
		},
	})
	md.PlainText("")

	writeVerdict(md, report)

	if report.Truncated {
		md.Note("The document was truncated before analysis; rules were checked against its beginning only.")
		md.PlainText("")
	}

	if report.Summary != "" {
		md.H2("Summary")
		md.PlainText("")
		md.PlainText(report.Summary)
		md.PlainText("")
	}

	md.H2("Results")
	md.PlainText("")
	rows := make([][]string, len(report.Results))
	for i, r := range report.Results {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			cell(r.Rule),
			statusLabel(r.Status),
			strconv.Itoa(r.Confidence) + "%",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Rule", "Status", "Confidence"},
		Rows:   rows,
	})
	md.PlainText("")

	for i, r := range report.Results {
		md.H3("Rule " + strconv.Itoa(i+1))
		md.PlainText("")
		md.PlainText("**" + r.Rule + "**")
		md.PlainText("")
		md.BulletList(
			"Status: "+statusLabel(r.Status),
			"Evidence: "+r.Evidence,
			"Reasoning: "+r.Reasoning,
		)
		md.PlainText("")
	}

	if includeFooter {
		md.HorizontalRule()
		md.PlainText("*Generated by docucheck. Judgments are produced by a language model and may be wrong.*")
	}

	return md.Build()
}

func writeVerdict(md *markdown.Markdown, report *model.Report) {
	switch report.Stats.Verdict {
	case model.VerdictCompliant:
		md.Tip("All rules passed.")
	case model.VerdictPartial:
		md.Warningf("%d of %d rules failed.", report.Stats.Failed, report.Stats.Total)
	default:
		md.Cautionf("Document is not compliant: %d of %d rules failed.", report.Stats.Failed, report.Stats.Total)
	}
	md.PlainText("")
}

func statusLabel(s model.Status) string {
	if s == model.StatusPass {
		return "✅ Pass"
	}
	return "❌ Fail"
}

// cell escapes characters that break a Markdown table row
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
