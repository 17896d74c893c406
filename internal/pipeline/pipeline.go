package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/docucheck/internal/llm"
	"github.com/ppiankov/docucheck/internal/model"
	"github.com/ppiankov/docucheck/internal/score"
	"golang.org/x/sync/errgroup"
)

// Judge is the subset of llm.Provider the pipeline depends on
type Judge interface {
	JudgeRule(ctx context.Context, rule, documentText, modelID string) model.CheckResult
	Summarize(ctx context.Context, documentText, modelID string) string
}

// Pipeline runs check sessions: one judgment per rule plus an optional
// summary, all concurrently against the same truncated text.
// It trusts its caller to have validated the rule set.
type Pipeline struct {
	judge        Judge
	scorer       *score.Scorer
	maxTextChars int
	progress     func(done, total int)
	log          *slog.Logger
	now          func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithMaxTextChars overrides the prompt-time truncation bound
func WithMaxTextChars(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxTextChars = n
		}
	}
}

// WithProgress registers a callback invoked after each dispatched call
// completes. It is called from multiple goroutines.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.log = logger
		}
	}
}

// NewPipeline creates a pipeline around a judge
func NewPipeline(judge Judge, opts ...Option) *Pipeline {
	p := &Pipeline{
		judge:        judge,
		scorer:       score.NewScorer(),
		maxTextChars: DefaultMaxTextChars,
		log:          slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request is the input of one check session
type Request struct {
	Text    string
	Rules   []string
	Model   string
	Summary bool   // Also generate a document summary
	Source  string // Document name for reporting, optional
}

// Run executes a check session. Results keep the order of req.Rules
// regardless of completion order. Every dispatched call is awaited.
func (p *Pipeline) Run(ctx context.Context, req Request) *model.Report {
	id := uuid.New().String()
	ctx = llm.WithRequestID(ctx, id)
	start := time.Now()

	text, truncated := TruncateText(req.Text, p.maxTextChars)

	total := len(req.Rules)
	if req.Summary {
		total++
	}
	p.log.Info("pipeline.run.start",
		"req_id", id,
		"model", req.Model,
		"rules", len(req.Rules),
		"summary", req.Summary,
		"text_len", len(req.Text),
		"truncated", truncated,
	)

	tracker := newProgress(total, p.progress)
	results := make([]model.CheckResult, len(req.Rules))
	var summary string

	var g errgroup.Group
	for i, rule := range req.Rules {
		g.Go(func() error {
			results[i] = p.judge.JudgeRule(ctx, rule, text, req.Model)
			tracker.step()
			return nil
		})
	}
	if req.Summary {
		g.Go(func() error {
			summary = p.judge.Summarize(ctx, text, req.Model)
			tracker.step()
			return nil
		})
	}
	_ = g.Wait() // judgments absorb their own errors

	report := &model.Report{
		ID:        id,
		Source:    req.Source,
		Model:     req.Model,
		Rules:     append([]string(nil), req.Rules...),
		Results:   results,
		Summary:   summary,
		Stats:     p.scorer.Calculate(results),
		Truncated: truncated,
		CheckedAt: p.now().UTC(),
	}

	p.log.Info("pipeline.run.ok",
		"req_id", id,
		"passed", report.Stats.Passed,
		"failed", report.Stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report
}
