package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/docucheck/internal/model"
	"github.com/sashabaranov/go-openai"
)

const testRule = "The document must mention at least one date"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// completionServer answers every chat completion with content
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "test-model",
			Choices: []openai.ChatCompletionChoice{
				{
					Index:        0,
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestProvider(t *testing.T, baseURL string) *OpenAIProvider {
	t.Helper()
	config := DefaultConfig()
	config.APIKey = "test-key"
	config.BaseURL = baseURL
	config.Model = "test-model"
	config.SiteURL = "https://docucheck.example"

	p, err := NewOpenAIProvider("openrouter", config, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return p
}

func TestNewOpenAIProvider_MissingKey(t *testing.T) {
	_, err := NewOpenAIProvider("openrouter", Config{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{provider: "", wantName: "openrouter"},
		{provider: "OpenRouter", wantName: "openrouter"},
		{provider: "openai", wantName: "openai"},
		{provider: "anthropic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(Config{Provider: tt.provider, APIKey: "k"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, p.Name())
			}
		})
	}
}

func TestJudgeRule_RequestShape(t *testing.T) {
	var got openai.ChatCompletionRequest
	var headers http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: `{"status":"pass","evidence":"Dated 1 May 2024.","reasoning":"A date is present.","confidence":95}`},
			}},
		})
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	p.JudgeRule(context.Background(), testRule, "Dated 1 May 2024.", "google/gemini-2.5-flash")

	if headers.Get("Authorization") != "Bearer test-key" {
		t.Errorf("Expected bearer credential, got %q", headers.Get("Authorization"))
	}
	if headers.Get("HTTP-Referer") != "https://docucheck.example" {
		t.Errorf("Expected HTTP-Referer header, got %q", headers.Get("HTTP-Referer"))
	}
	if headers.Get("X-Title") != "DocuCheck AI" {
		t.Errorf("Expected X-Title header, got %q", headers.Get("X-Title"))
	}

	if got.Model != "google/gemini-2.5-flash" {
		t.Errorf("Expected requested model, got %s", got.Model)
	}
	if got.Temperature != 0.3 {
		t.Errorf("Expected temperature 0.3, got %v", got.Temperature)
	}
	if got.MaxTokens != 500 {
		t.Errorf("Expected max_tokens 500, got %d", got.MaxTokens)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != openai.ChatMessageRoleSystem || !strings.Contains(got.Messages[0].Content, "JSON") {
		t.Errorf("Unexpected system message: %+v", got.Messages[0])
	}
	if got.Messages[1].Role != openai.ChatMessageRoleUser {
		t.Errorf("Expected user role, got %s", got.Messages[1].Role)
	}
	if !strings.Contains(got.Messages[1].Content, testRule) || !strings.Contains(got.Messages[1].Content, "Dated 1 May 2024.") {
		t.Errorf("User message must embed rule and document: %q", got.Messages[1].Content)
	}
}

func TestJudgeRule_Replies(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		status     model.Status
		evidence   string
		reasoning  string
		confidence int
	}{
		{
			name:       "clean pass",
			content:    `{"status":"pass","evidence":"Signed on 2024-05-01.","reasoning":"Explicit date.","confidence":92}`,
			status:     model.StatusPass,
			evidence:   "Signed on 2024-05-01.",
			reasoning:  "Explicit date.",
			confidence: 92,
		},
		{
			name:       "fenced json",
			content:    "```json\n{\"status\":\"fail\",\"evidence\":\"None.\",\"reasoning\":\"No date.\",\"confidence\":80}\n```",
			status:     model.StatusFail,
			evidence:   "None.",
			reasoning:  "No date.",
			confidence: 80,
		},
		{
			name:       "upper case pass",
			content:    `{"status":"PASS","evidence":"e","reasoning":"r","confidence":70}`,
			status:     model.StatusPass,
			evidence:   "e",
			reasoning:  "r",
			confidence: 70,
		},
		{
			name:       "unknown status defaults to fail",
			content:    `{"status":"partially","evidence":"e","reasoning":"r","confidence":70}`,
			status:     model.StatusFail,
			evidence:   "e",
			reasoning:  "r",
			confidence: 70,
		},
		{
			name:       "confidence above range",
			content:    `{"status":"pass","evidence":"e","reasoning":"r","confidence":150}`,
			status:     model.StatusPass,
			evidence:   "e",
			reasoning:  "r",
			confidence: 100,
		},
		{
			name:       "confidence below range",
			content:    `{"status":"fail","evidence":"e","reasoning":"r","confidence":-5}`,
			status:     model.StatusFail,
			evidence:   "e",
			reasoning:  "r",
			confidence: 0,
		},
		{
			name:       "missing fields",
			content:    `{"status":"pass"}`,
			status:     model.StatusPass,
			evidence:   MissingEvidence,
			reasoning:  MissingReasoning,
			confidence: 0,
		},
		{
			name:       "non numeric confidence",
			content:    `{"status":"fail","evidence":"e","reasoning":"r","confidence":"very"}`,
			status:     model.StatusFail,
			evidence:   "e",
			reasoning:  "r",
			confidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := completionServer(t, tt.content)
			defer server.Close()

			result := newTestProvider(t, server.URL).JudgeRule(context.Background(), testRule, "text", "")

			if result.Rule != testRule {
				t.Errorf("Expected rule echo, got %q", result.Rule)
			}
			if result.Status != tt.status {
				t.Errorf("Expected status %s, got %s", tt.status, result.Status)
			}
			if result.Evidence != tt.evidence {
				t.Errorf("Expected evidence %q, got %q", tt.evidence, result.Evidence)
			}
			if result.Reasoning != tt.reasoning {
				t.Errorf("Expected reasoning %q, got %q", tt.reasoning, result.Reasoning)
			}
			if result.Confidence != tt.confidence {
				t.Errorf("Expected confidence %d, got %d", tt.confidence, result.Confidence)
			}
		})
	}
}

func TestJudgeRule_IgnoresEchoedRule(t *testing.T) {
	server := completionServer(t, `{"rule":"something else","status":"pass","evidence":"e","reasoning":"r","confidence":50}`)
	defer server.Close()

	result := newTestProvider(t, server.URL).JudgeRule(context.Background(), testRule, "text", "")
	if result.Rule != testRule {
		t.Errorf("Expected original rule, got %q", result.Rule)
	}
}

func TestJudgeRule_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body          string
		wantInMsg     string
		wantReasoning string
	}{
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			body:       `{"error": {"message": "Internal Server Error", "type": "server_error"}}`,
			wantInMsg:  "500",
		},
		{
			name:       "rate limit",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`,
			wantInMsg:  "Rate limit exceeded",
		},
		{
			name:       "plain text body",
			statusCode: http.StatusBadGateway,
			body:          `upstream unavailable`,
			wantInMsg:     "502",
			wantReasoning: "openrouter API error: 502 - upstream unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result := newTestProvider(t, server.URL).JudgeRule(context.Background(), testRule, "text", "")
			assertErrorResult(t, result)
			if !strings.Contains(result.Reasoning, tt.wantInMsg) {
				t.Errorf("Expected reasoning to contain %q, got %q", tt.wantInMsg, result.Reasoning)
			}
			if tt.wantReasoning != "" && result.Reasoning != tt.wantReasoning {
				t.Errorf("Expected reasoning %q, got %q", tt.wantReasoning, result.Reasoning)
			}
		})
	}
}

func TestJudgeRule_EmptyCompletion(t *testing.T) {
	for _, content := range []string{"", "   \n"} {
		server := completionServer(t, content)
		result := newTestProvider(t, server.URL).JudgeRule(context.Background(), testRule, "text", "")
		server.Close()

		assertErrorResult(t, result)
		if result.Reasoning != "No response from LLM" {
			t.Errorf("Expected 'No response from LLM', got %q", result.Reasoning)
		}
	}
}

func TestJudgeRule_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "chatcmpl-empty"})
	}))
	defer server.Close()

	result := newTestProvider(t, server.URL).JudgeRule(context.Background(), testRule, "text", "")
	assertErrorResult(t, result)
}

func TestJudgeRule_MalformedReply(t *testing.T) {
	for _, content := range []string{"I think it passes.", `{"status": "pass"`, "```json\n```"} {
		server := completionServer(t, content)
		result := newTestProvider(t, server.URL).JudgeRule(context.Background(), testRule, "text", "")
		server.Close()

		assertErrorResult(t, result)
	}
}

func TestJudgeRule_NonObjectReplyIsCoerced(t *testing.T) {
	for _, content := range []string{`"pass"`, `[1]`, `null`, `42`} {
		server := completionServer(t, content)
		result := newTestProvider(t, server.URL).JudgeRule(context.Background(), testRule, "text", "")
		server.Close()

		if result.Status != model.StatusFail {
			t.Errorf("%s: expected fail, got %s", content, result.Status)
		}
		if result.Evidence != MissingEvidence || result.Reasoning != MissingReasoning {
			t.Errorf("%s: expected placeholders, got %q / %q", content, result.Evidence, result.Reasoning)
		}
		if result.Confidence != 0 || !result.Coerced {
			t.Errorf("%s: expected coerced result with confidence 0, got %+v", content, result)
		}
	}
}

func TestJudgeRule_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: `{"status":"fail","evidence":"e","reasoning":"r","confidence":10}`},
			}},
		})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIKey = "test-key"
	config.BaseURL = server.URL
	config.Temperature = 0
	p, err := NewOpenAIProvider("openrouter", config, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	p.JudgeRule(context.Background(), testRule, "text", "m")

	temp, ok := raw["temperature"].(float64)
	if !ok {
		t.Fatalf("Expected temperature in request, got %v", raw["temperature"])
	}
	if temp <= 0 || temp > 1e-6 {
		t.Errorf("Expected an effectively zero temperature, got %v", temp)
	}
}

func TestConfigFromModel_Defaults(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{Temperature: 0, MaxTokens: 0, SummaryMaxTokens: -1})
	if cfg.Temperature != 0 {
		t.Errorf("Expected configured temperature 0 to be kept, got %v", cfg.Temperature)
	}
	if cfg.MaxTokens != 500 || cfg.SummaryMaxTokens != 300 {
		t.Errorf("Expected token defaults 500/300, got %d/%d", cfg.MaxTokens, cfg.SummaryMaxTokens)
	}

	cfg = ConfigFromModel(model.LLMConfig{Temperature: 0.7, MaxTokens: 64})
	if cfg.Temperature != 0.7 || cfg.MaxTokens != 64 {
		t.Errorf("Expected explicit values to be kept, got %v/%d", cfg.Temperature, cfg.MaxTokens)
	}
}

func TestJudgeRule_MalformedTransportBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	result := newTestProvider(t, server.URL).JudgeRule(context.Background(), testRule, "text", "")
	assertErrorResult(t, result)
}

func TestSummarize(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: "  A short lease agreement.  \n"},
			}},
		})
	}))
	defer server.Close()

	summary := newTestProvider(t, server.URL).Summarize(context.Background(), "Lease text", "")
	if summary != "A short lease agreement." {
		t.Errorf("Expected trimmed summary, got %q", summary)
	}
	if got.Model != "test-model" {
		t.Errorf("Expected configured default model, got %s", got.Model)
	}
	if len(got.Messages) != 2 || !strings.Contains(got.Messages[1].Content, "Lease text") {
		t.Errorf("Unexpected summary messages: %+v", got.Messages)
	}
}

func TestSummarize_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	summary := newTestProvider(t, server.URL).Summarize(context.Background(), "text", "")
	if summary != SummaryUnavailable {
		t.Errorf("Expected fallback summary, got %q", summary)
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if RequestID(ctx) != "abc" {
		t.Errorf("Expected abc, got %q", RequestID(ctx))
	}
	if RequestID(context.Background()) != "" {
		t.Error("Expected empty id on bare context")
	}
}

func assertErrorResult(t *testing.T, result model.CheckResult) {
	t.Helper()
	if result.Status != model.StatusFail {
		t.Errorf("Expected fail status, got %s", result.Status)
	}
	if result.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %d", result.Confidence)
	}
	if result.Evidence != ErrorEvidence {
		t.Errorf("Expected evidence %q, got %q", ErrorEvidence, result.Evidence)
	}
	if result.Rule != testRule {
		t.Errorf("Expected rule echo, got %q", result.Rule)
	}
	if result.Reasoning == "" {
		t.Error("Expected error detail in reasoning")
	}
}
