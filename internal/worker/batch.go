package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/docucheck/internal/model"
	"github.com/ppiankov/docucheck/internal/pipeline"
)

// Extractor turns a document file into text
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Checker runs one check session over extracted text
type Checker interface {
	Run(ctx context.Context, req pipeline.Request) *model.Report
}

// CheckJob checks one document against the batch's rules
type CheckJob struct {
	Path      string
	Rules     []string
	Model     string
	Summary   bool
	Extractor Extractor
	Checker   Checker
	Limiter   *Limiter
}

// Execute extracts the document and runs a check session on it
func (j *CheckJob) Execute(ctx context.Context) Result {
	text, err := j.Extractor.Extract(ctx, j.Path)
	if err != nil {
		return &DocumentResult{Path: j.Path, Error: err}
	}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Model); err != nil {
			return &DocumentResult{Path: j.Path, Error: err}
		}
	}

	report := j.Checker.Run(ctx, pipeline.Request{
		Text:    text,
		Rules:   j.Rules,
		Model:   j.Model,
		Summary: j.Summary,
		Source:  j.Path,
	})
	return &DocumentResult{Path: j.Path, Report: report}
}

// DocumentResult is the outcome for one document of a batch
type DocumentResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the extraction or scheduling error, if any
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many documents against one rule set
type BatchProcessor struct {
	extractor   Extractor
	checker     Checker
	concurrency int
	limiter     *Limiter
	onDone      func(*DocumentResult)
}

// BatchOption configures a BatchProcessor
type BatchOption func(*BatchProcessor)

// WithLimiter throttles session starts per model
func WithLimiter(l *Limiter) BatchOption {
	return func(b *BatchProcessor) {
		b.limiter = l
	}
}

// WithOnDone registers a callback invoked as each document finishes.
// It is called from worker goroutines.
func WithOnDone(fn func(*DocumentResult)) BatchOption {
	return func(b *BatchProcessor) {
		b.onDone = fn
	}
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(extractor Extractor, checker Checker, concurrency int, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		extractor:   extractor,
		checker:     checker,
		concurrency: concurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ProcessFiles checks every document with bounded concurrency. Results keep
// the order of paths. Rules must already be validated.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths, rules []string, modelID string, summary bool) []*DocumentResult {
	if len(paths) == 0 {
		return []*DocumentResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		var job Job = &CheckJob{
			Path:      path,
			Rules:     rules,
			Model:     modelID,
			Summary:   summary,
			Extractor: b.extractor,
			Checker:   b.checker,
			Limiter:   b.limiter,
		}
		if b.onDone != nil {
			job = notifyJob{Job: job, fn: b.onDone}
		}
		if !pool.Submit(job) {
			// Canceled mid-batch: stop workers, remaining paths are reported unchecked
			pool.Shutdown()
			break
		}
	}

	results := pool.Wait()

	out := make([]*DocumentResult, len(paths))
	for i := range paths {
		var result Result
		if i < len(results) {
			result = results[i]
		}
		if result == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &DocumentResult{Path: paths[i], Error: fmt.Errorf("not checked: %w", err)}
			continue
		}
		out[i] = result.(*DocumentResult)
	}
	return out
}

type notifyJob struct {
	Job
	fn func(*DocumentResult)
}

func (n notifyJob) Execute(ctx context.Context) Result {
	result := n.Job.Execute(ctx)
	n.fn(result.(*DocumentResult))
	return result
}

// ReadLines reads non-empty lines from a file, skipping # comments
func ReadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}

// ReadPathsFromFile reads document paths (one per line), dropping duplicates
func ReadPathsFromFile(filePath string) ([]string, error) {
	lines, err := ReadLines(filePath)
	if err != nil {
		return nil, err
	}

	var paths []string
	seen := make(map[string]bool)
	for _, line := range lines {
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	return paths, nil
}
