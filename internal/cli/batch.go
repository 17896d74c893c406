package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/ppiankov/docucheck/internal/extract"
	"github.com/ppiankov/docucheck/internal/model"
	"github.com/ppiankov/docucheck/internal/pipeline"
	"github.com/ppiankov/docucheck/internal/render"
	"github.com/ppiankov/docucheck/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	inputList    string
	batchXLSX    string
	batchRate    float64
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [documents...]",
	Short: "Check many documents against the same three rules",
	Long: `Batch checks several documents in parallel against one rule set:
- Rules are validated once, before any document is read
- Documents come from arguments or from --input (one path per line)
- Each document runs its own check session with concurrent judgments
- A JSON and a Markdown report are written per document

Example:
  docucheck batch a.pdf b.pdf c.pdf --rules-file rules.txt
  docucheck batch --input docs.txt --rules-file rules.txt --concurrency 4 --output-dir ./reports
  docucheck batch --input docs.txt --rules-file rules.txt --xlsx overview.xlsx --rate 0.5`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addRuleFlags(batchCmd.Flags())
	addModelFlags(batchCmd.Flags())

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent documents")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 0, "max check sessions started per second per model (0 = unlimited)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Input/output flags
	batchCmd.Flags().StringVar(&inputList, "input", "", "file listing document paths, one per line")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./docucheck-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "also write one XLSX workbook covering every document")
}

func runBatch(cmd *cobra.Command, args []string) error {
	rules, err := collectRules()
	if err != nil {
		return err
	}

	paths, err := batchPaths(args, inputList)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	modelID, summary := resolveRun(cfg)

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  DocuCheck Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Documents:    %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Model:        %s (%s)\n", modelID, provider.Name())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:    cfg.Extract.Pdftotext,
		MaxFileBytes: cfg.Extract.MaxFileBytes,
	}, slog.Default())

	p := pipeline.NewPipeline(provider,
		pipeline.WithMaxTextChars(cfg.Check.MaxTextChars),
		pipeline.WithLogger(slog.Default()),
	)

	bar := newProgressBar(len(paths), "[cyan][bold]Checking documents...[reset]")
	var barMu sync.Mutex

	processor := worker.NewBatchProcessor(extractor, p, concurrency,
		worker.WithLimiter(worker.NewLimiter(batchRate, 1)),
		worker.WithOnDone(func(*worker.DocumentResult) {
			barMu.Lock()
			defer barMu.Unlock()
			_ = bar.Add(1)
		}),
	)

	results := processor.ProcessFiles(ctx, paths, rules, modelID, summary)
	_ = bar.Finish()
	fmt.Fprintf(os.Stderr, "\n")

	renderer := render.NewRenderer(cfg.Output.IncludeFooter)
	names := make(map[string]int)
	var reports []*model.Report
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		// Same-named documents from different directories must not overwrite each other
		slug := reportBaseName(result.Path)
		names[slug]++
		if n := names[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		successCount++
		reports = append(reports, result.Report)
		stats := result.Report.Stats
		fmt.Fprintf(os.Stderr, "✓ %s (%d/%d passed, %s)\n", result.Path, stats.Passed, stats.Total, stats.Verdict)
	}

	if batchXLSX != "" && len(reports) > 0 {
		if err := renderer.RenderXLSX(reports, batchXLSX); err != nil {
			return fmt.Errorf("render xlsx: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote XLSX: %s\n", batchXLSX)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if successCount == 0 {
		return fmt.Errorf("no document was checked")
	}
	return nil
}

// batchPaths merges positional documents with an optional list file
func batchPaths(args []string, listFile string) ([]string, error) {
	paths := append([]string(nil), args...)
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return nil, fmt.Errorf("read input list: %w", err)
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no documents given: pass paths as arguments or use --input")
	}
	return paths, nil
}
