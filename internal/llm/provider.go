package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/docucheck/internal/model"
)

// ErrMissingAPIKey is returned when no credential is configured for the provider
var ErrMissingAPIKey = errors.New("LLM API key is not configured")

// Placeholder values used when a judgment cannot be produced or a field is missing
const (
	ErrorEvidence      = "Error occurred during analysis"
	MissingEvidence    = "No evidence provided"
	MissingReasoning   = "No reasoning provided"
	SummaryUnavailable = "Unable to generate document summary at this time."
)

// Provider judges rules against document text and summarizes documents.
// Implementations absorb every upstream failure into their return values.
type Provider interface {
	// Name returns the provider name
	Name() string

	// JudgeRule returns exactly one result for the rule, never an error
	JudgeRule(ctx context.Context, rule, documentText, modelID string) model.CheckResult

	// Summarize returns a short prose summary or SummaryUnavailable
	Summarize(ctx context.Context, documentText, modelID string) string

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openrouter" or "openai"
	Provider string

	// Model used when a request does not name one
	Model string

	// APIKey is the bearer credential
	APIKey string

	// BaseURL overrides the provider endpoint (tests, proxies, self-hosted gateways)
	BaseURL string

	// Site identification headers (OpenRouter attribution)
	SiteURL   string
	SiteTitle string

	// Temperature is sent as configured, including 0
	Temperature float32

	// Completion token bounds; ConfigFromModel fills non-positive values
	MaxTokens        int
	SummaryMaxTokens int

	// Timeout per completion call; zero leaves the caller's context in charge
	Timeout time.Duration

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:         "openrouter",
		Temperature:      0.3,
		MaxTokens:        500,
		SummaryMaxTokens: 300,
		SiteTitle:        "DocuCheck AI",
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config. Token bounds
// default once here; temperature is taken as given.
func ConfigFromModel(c model.LLMConfig) Config {
	defaults := DefaultConfig()
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaults.MaxTokens
	}
	if c.SummaryMaxTokens <= 0 {
		c.SummaryMaxTokens = defaults.SummaryMaxTokens
	}
	return Config{
		Provider:         c.Provider,
		Model:            c.Model,
		APIKey:           c.APIKey,
		BaseURL:          c.BaseURL,
		SiteURL:          c.SiteURL,
		SiteTitle:        c.SiteTitle,
		Temperature:      c.Temperature,
		MaxTokens:        c.MaxTokens,
		SummaryMaxTokens: c.SummaryMaxTokens,
		Timeout:          c.Timeout,
		HTTPProxy:        c.HTTPProxy,
		HTTPSProxy:       c.HTTPSProxy,
	}
}

const judgeSystemPrompt = `You are a meticulous document compliance reviewer. You decide whether a document satisfies one rule.

STRICT OUTPUT REQUIREMENTS:
1. Reply with a single JSON object and nothing else: no markdown, no code fences, no commentary
2. Mark "pass" only when the document contains clear evidence; otherwise "fail"
3. Quote the exact sentence from the document that supports your decision as evidence
4. Keep the reasoning to 20 words or fewer
5. Report your certainty as an integer confidence from 0 to 100

Reply shape:
{
  "status": "pass" | "fail",
  "evidence": "exact sentence quoted from the document",
  "reasoning": "short explanation, max 20 words",
  "confidence": 0-100
}`

const summarySystemPrompt = `You write concise, neutral summaries of documents. You never invent facts that are not in the text.`

// BuildJudgePrompt embeds the literal rule and document text in the user message
func BuildJudgePrompt(rule, documentText string) string {
	return fmt.Sprintf(`RULE TO CHECK: "%s"

DOCUMENT TEXT:
%s

Decide whether the document satisfies the rule. Reply with JSON only.`, rule, documentText)
}

// BuildSummaryPrompt asks for a 3-4 sentence prose summary
func BuildSummaryPrompt(documentText string) string {
	return fmt.Sprintf(`Summarize the document below in 3-4 sentences and fewer than 150 words.
Describe its purpose and main points in plain prose. Do not use lists, bullet points or headings.

DOCUMENT TEXT:
%s`, documentText)
}

type requestIDKey struct{}

// WithRequestID attaches a session id to the context for log correlation
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the session id attached to ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
