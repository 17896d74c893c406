package model

// Status is the verdict for a single rule
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// CheckResult is the judgment of one rule against one document
type CheckResult struct {
	Rule       string `json:"rule"`       // Echo of the submitted rule, never the model's copy
	Status     Status `json:"status"`     // pass or fail
	Evidence   string `json:"evidence"`   // Ideally a verbatim document excerpt
	Reasoning  string `json:"reasoning"`  // Short explanation (~20 words, not enforced)
	Confidence int    `json:"confidence"` // 0-100 inclusive

	// Coerced marks a reply that missed the requested shape and was mapped
	// with defaults
	Coerced bool `json:"-"`
}

// Passed reports whether the rule was judged as satisfied
func (r CheckResult) Passed() bool {
	return r.Status == StatusPass
}

// Verdict summarizes a whole check session
type Verdict string

const (
	VerdictCompliant    Verdict = "compliant"     // Every rule passed
	VerdictPartial      Verdict = "partial"       // At least half of the rules passed
	VerdictNonCompliant Verdict = "non_compliant" // Fewer than half passed
)

// Stats aggregates the results of a check session
type Stats struct {
	Total             int      `json:"total"`
	Passed            int      `json:"passed"`
	Failed            int      `json:"failed"`
	Score             int      `json:"score"`              // Percentage of rules passed (0-100)
	AverageConfidence int      `json:"average_confidence"` // Mean confidence across results
	Verdict           Verdict  `json:"verdict"`
	FailedRules       []string `json:"failed_rules,omitempty"`
	Coerced           int      `json:"coerced,omitempty"` // Replies mapped with defaults instead of read as-is
}
