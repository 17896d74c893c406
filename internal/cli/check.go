package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ppiankov/docucheck/internal/extract"
	"github.com/ppiankov/docucheck/internal/model"
	"github.com/ppiankov/docucheck/internal/pipeline"
	"github.com/ppiankov/docucheck/internal/render"
	"github.com/spf13/cobra"
)

var (
	outJSON      string
	outMD        string
	outXLSX      string
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <document>",
	Short: "Check one document against three rules",
	Long: `Check extracts the text of a document (PDF via pdftotext, plain text,
Markdown or HTML), then asks a language model to judge each of the three rules
against it. The three judgments (and the optional summary) run concurrently.

Rules are validated before the document is read or any model is called.

Example:
  docucheck check policy.pdf \
    -r "The document must have a purpose section" \
    -r "The document must mention at least one date" \
    -r "The document must define at least one term"
  docucheck check policy.pdf --rules-file rules.txt --summary --md report.md
  docucheck check policy.pdf --rules-file rules.txt --json - > report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	addRuleFlags(checkCmd.Flags())
	addModelFlags(checkCmd.Flags())

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (- for stdout)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	checkCmd.Flags().StringVar(&outXLSX, "xlsx", "", "output XLSX path")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall check timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	rules, err := collectRules()
	if err != nil {
		return err
	}

	cfg := loadConfig()
	modelID, summary := resolveRun(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", path)
		fmt.Fprintf(os.Stderr, "Model: %s (%s)\n", modelID, cfg.LLM.Provider)
		fmt.Fprintf(os.Stderr, "Summary: %v\n", summary)
		fmt.Fprintln(os.Stderr)
	}

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:    cfg.Extract.Pdftotext,
		MaxFileBytes: cfg.Extract.MaxFileBytes,
	}, slog.Default())

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d characters\n", len([]rune(text)))
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	total := len(rules)
	if summary {
		total++
	}
	bar := newProgressBar(total, "[cyan][bold]Judging rules...[reset]")

	p := pipeline.NewPipeline(provider,
		pipeline.WithMaxTextChars(cfg.Check.MaxTextChars),
		pipeline.WithLogger(slog.Default()),
		pipeline.WithProgress(func(done, total int) {
			_ = bar.Add(1)
		}),
	)

	report := p.Run(ctx, pipeline.Request{
		Text:    text,
		Rules:   rules,
		Model:   modelID,
		Summary: summary,
		Source:  path,
	})
	_ = bar.Finish()

	return writeOutputs(report, cfg)
}

func writeOutputs(report *model.Report, cfg *model.Config) error {
	renderer := render.NewRenderer(cfg.Output.IncludeFooter)

	if outJSON == "-" {
		// Keep stdout clean for the JSON report
		renderer.SetOutput(os.Stderr)
		if err := render.WriteJSON(os.Stdout, report); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	} else if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
	}
	if outXLSX != "" {
		if err := renderer.RenderXLSX([]*model.Report{report}, outXLSX); err != nil {
			return fmt.Errorf("render xlsx: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote XLSX: %s\n", outXLSX)
	}

	renderer.RenderSummary(report)
	return nil
}
