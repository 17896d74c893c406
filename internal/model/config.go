package model

import "time"

// Config is the complete docucheck configuration.
// It is resolved once at startup and treated as read-only afterwards.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Check   CheckConfig   `yaml:"check"`
	Server  ServerConfig  `yaml:"server"`
	Extract ExtractConfig `yaml:"extract"`
	Output  OutputConfig  `yaml:"output"`
}

// LLMConfig configures the chat-completion backend
type LLMConfig struct {
	Provider         string        `yaml:"provider"`           // openrouter, openai
	Model            string        `yaml:"model"`              // Default model when none is given
	APIKey           string        `yaml:"api_key,omitempty"`  // Prefer OPENROUTER_API_KEY
	BaseURL          string        `yaml:"base_url,omitempty"` // Overrides the provider endpoint
	SiteURL          string        `yaml:"site_url"`           // Sent as HTTP-Referer
	SiteTitle        string        `yaml:"site_title"`         // Sent as X-Title
	Temperature      float32       `yaml:"temperature"`
	MaxTokens        int           `yaml:"max_tokens"`
	SummaryMaxTokens int           `yaml:"summary_max_tokens"`
	Timeout          time.Duration `yaml:"timeout"` // 0 = rely on the caller's context
	HTTPProxy        string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy       string        `yaml:"https_proxy,omitempty"`
}

// CheckConfig controls a check session
type CheckConfig struct {
	MaxTextChars int  `yaml:"max_text_chars"` // Prompt-time truncation bound
	Summary      bool `yaml:"summary"`        // Generate a document summary by default (CLI)
}

// ServerConfig controls the HTTP boundary
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	SubmitInterval    time.Duration `yaml:"submit_interval"` // Minimum gap between accepted submissions per client, 0 (default) disables
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// ExtractConfig controls document text extraction
type ExtractConfig struct {
	MaxFileBytes int64  `yaml:"max_file_bytes"`
	Pdftotext    string `yaml:"pdftotext"` // Path to the pdftotext binary
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:         "openrouter",
			Model:            "google/gemini-2.5-flash",
			SiteURL:          "http://localhost:3000",
			SiteTitle:        "DocuCheck AI",
			Temperature:      0.3,
			MaxTokens:        500,
			SummaryMaxTokens: 300,
		},
		Check: CheckConfig{
			MaxTextChars: 8000,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			MaxBodyBytes:      16 << 20,
			ReadHeaderTimeout: 10 * time.Second,
		},
		Extract: ExtractConfig{
			MaxFileBytes: 10 << 20,
			Pdftotext:    "pdftotext",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
