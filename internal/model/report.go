package model

import "time"

// Report is the outcome of one check session.
// It lives for one request/response cycle and is never persisted by the service.
type Report struct {
	ID        string        `json:"id" yaml:"id"`                             // Session id (uuid), also used in logs as req_id
	Source    string        `json:"source,omitempty" yaml:"source,omitempty"` // Document name when known (CLI)
	Model     string        `json:"model" yaml:"model"`
	Rules     []string      `json:"rules" yaml:"rules"`
	Results   []CheckResult `json:"results" yaml:"results"`                   // Same order as Rules
	Summary   string        `json:"summary,omitempty" yaml:"summary,omitempty"`
	Stats     Stats         `json:"stats" yaml:"stats"`
	Truncated bool          `json:"truncated" yaml:"truncated"` // Document text was cut before prompting
	CheckedAt time.Time     `json:"checked_at" yaml:"checked_at"`
}
