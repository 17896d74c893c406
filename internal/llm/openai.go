package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/docucheck/internal/model"
	"github.com/ppiankov/docucheck/internal/util"
	"github.com/sashabaranov/go-openai"
)

var errNoResponse = errors.New("No response from LLM")

// OpenAIProvider implements Provider against any OpenAI-compatible
// chat-completions endpoint (OpenRouter, OpenAI)
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
	log    *slog.Logger
}

// Option configures an OpenAIProvider
type Option func(*OpenAIProvider)

// WithLogger sets the logger used for judgment and summary events
func WithLogger(logger *slog.Logger) Option {
	return func(p *OpenAIProvider) {
		if logger != nil {
			p.log = logger
		}
	}
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible endpoint
func NewOpenAIProvider(name string, config Config, opts ...Option) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}

	headers := map[string]string{}
	if config.SiteURL != "" {
		headers["HTTP-Referer"] = config.SiteURL
	}
	if config.SiteTitle != "" {
		headers["X-Title"] = config.SiteTitle
	}
	clientConfig.HTTPClient = util.NewHTTPClient(config.HTTPProxy, config.HTTPSProxy, headers)

	p := &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   name,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks the credential with a lightweight model listing call
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		p.log.Warn("llm.available.failed", "provider", p.name, "error", err)
		return false
	}
	return true
}

// JudgeRule sends one completion request for the rule and maps the reply
// into a CheckResult. Every failure becomes a fail result with confidence 0.
func (p *OpenAIProvider) JudgeRule(ctx context.Context, rule, documentText, modelID string) model.CheckResult {
	rid := RequestID(ctx)
	start := time.Now()

	content, err := p.complete(ctx, modelID, judgeSystemPrompt, BuildJudgePrompt(rule, documentText), p.config.MaxTokens)
	if err != nil {
		p.log.Error("llm.judge.upstream_error",
			"req_id", rid, "model", p.modelOrDefault(modelID), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return errorResult(rule, err)
	}

	parsed, err := parseJudgment(rule, content)
	if err != nil {
		p.log.Error("llm.judge.parse_error",
			"req_id", rid, "error", err, "content", truncate(content, 8<<10),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return errorResult(rule, err)
	}
	result := parsed.result
	if result.Coerced {
		p.log.Warn("llm.judge.lenient_coercion",
			"req_id", rid, "error", parsed.mismatch,
		)
	}

	p.log.Info("llm.judge.ok",
		"req_id", rid,
		"model", p.modelOrDefault(modelID),
		"status", result.Status,
		"confidence", result.Confidence,
		"coerced", result.Coerced,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result
}

// Summarize returns a trimmed prose summary, or SummaryUnavailable on any failure
func (p *OpenAIProvider) Summarize(ctx context.Context, documentText, modelID string) string {
	rid := RequestID(ctx)
	start := time.Now()

	content, err := p.complete(ctx, modelID, summarySystemPrompt, BuildSummaryPrompt(documentText), p.config.SummaryMaxTokens)
	if err != nil {
		p.log.Error("llm.summary.upstream_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return SummaryUnavailable
	}

	p.log.Info("llm.summary.ok",
		"req_id", rid, "chars", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content
}

// complete performs a single chat completion round trip and returns the
// trimmed message content
func (p *OpenAIProvider) complete(ctx context.Context, modelID, system, user string, maxTokens int) (string, error) {
	// go-openai drops a zero temperature from the request; the smallest
	// positive value keeps an explicit 0 deterministic upstream
	temperature := p.config.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.modelOrDefault(modelID),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", p.describeError(err)
	}

	if len(resp.Choices) == 0 {
		return "", errNoResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errNoResponse
	}
	return content, nil
}

// describeError flattens go-openai errors into "status - body" form
func (p *OpenAIProvider) describeError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error: %d - %s", p.name, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := strings.TrimSpace(string(reqErr.Body))
		if detail == "" && reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
		return fmt.Errorf("%s API error: %d - %s", p.name, reqErr.HTTPStatusCode, detail)
	}
	return fmt.Errorf("%s API error: %w", p.name, err)
}

func (p *OpenAIProvider) modelOrDefault(modelID string) string {
	if modelID != "" {
		return modelID
	}
	return p.config.Model
}

// errorResult is the fail result every upstream or parse error degrades to
func errorResult(rule string, err error) model.CheckResult {
	return model.CheckResult{
		Rule:       rule,
		Status:     model.StatusFail,
		Evidence:   ErrorEvidence,
		Reasoning:  err.Error(),
		Confidence: 0,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
