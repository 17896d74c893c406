package render

import (
	"fmt"
	"io"

	"github.com/ppiankov/docucheck/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
)

// WriteXLSX writes a workbook with a Summary sheet (one row per document)
// and a Results sheet (one row per rule judgment)
func WriteXLSX(w io.Writer, reports []*model.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet becomes the summary
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	index, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(index)

	if err := writeRow(f, summarySheet, 1,
		"Document", "Model", "Checked At", "Score", "Passed", "Failed", "Avg Confidence", "Verdict", "Truncated", "Summary"); err != nil {
		return err
	}
	if err := writeRow(f, resultsSheet, 1,
		"Document", "#", "Rule", "Status", "Confidence", "Evidence", "Reasoning"); err != nil {
		return err
	}

	row := 2
	for i, report := range reports {
		err := writeRow(f, summarySheet, i+2,
			report.Source,
			report.Model,
			report.CheckedAt.Format("2006-01-02 15:04:05"),
			report.Stats.Score,
			report.Stats.Passed,
			report.Stats.Failed,
			report.Stats.AverageConfidence,
			string(report.Stats.Verdict),
			report.Truncated,
			report.Summary,
		)
		if err != nil {
			return err
		}

		for j, r := range report.Results {
			err := writeRow(f, resultsSheet, row,
				report.Source,
				j+1,
				r.Rule,
				string(r.Status),
				r.Confidence,
				r.Evidence,
				r.Reasoning,
			)
			if err != nil {
				return err
			}
			row++
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 32) // document
	_ = f.SetColWidth(summarySheet, "B", "B", 28) // model
	_ = f.SetColWidth(summarySheet, "C", "C", 20) // checked at
	_ = f.SetColWidth(summarySheet, "J", "J", 80) // summary
	_ = f.SetColWidth(resultsSheet, "A", "A", 32) // document
	_ = f.SetColWidth(resultsSheet, "C", "C", 48) // rule
	_ = f.SetColWidth(resultsSheet, "F", "G", 60) // evidence, reasoning

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("xlsx cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("xlsx %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
