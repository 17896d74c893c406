package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
)

// Rule set policy. These are compatibility values, not derived limits.
const (
	RuleCount           = 3
	MinRuleLength       = 10
	MaxRuleLength       = 200
	MinLetters          = 5
	SimilarityThreshold = 0.8
)

// Kind classifies a rule set violation
type Kind string

const (
	KindWrongCount    Kind = "wrong_count"
	KindEmpty         Kind = "empty"
	KindTooShort      Kind = "too_short"
	KindTooLong       Kind = "too_long"
	KindQuestionForm  Kind = "question_form"
	KindNotMeaningful Kind = "not_meaningful"
	KindDuplicate     Kind = "duplicate_rules"
	KindSimilar       Kind = "similar_rules"
)

// Error describes why a rule set was rejected.
// Rule and Other are 1-indexed; zero means not applicable.
type Error struct {
	Kind    Kind
	Rule    int
	Other   int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same Kind, so callers can test against
// sentinels such as &Error{Kind: KindSimilar}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// ValidateRule checks a single rule. index is 0-based.
func ValidateRule(rule string, index int) error {
	n := index + 1
	trimmed := strings.TrimSpace(rule)
	length := utf8.RuneCountInString(trimmed)

	switch {
	case length == 0:
		return &Error{Kind: KindEmpty, Rule: n, Message: fmt.Sprintf("Rule %d cannot be empty", n)}
	case length < MinRuleLength:
		return &Error{Kind: KindTooShort, Rule: n,
			Message: fmt.Sprintf("Rule %d is too short (minimum %d characters). Be more specific.", n, MinRuleLength)}
	case length > MaxRuleLength:
		return &Error{Kind: KindTooLong, Rule: n,
			Message: fmt.Sprintf("Rule %d is too long (maximum %d characters). Keep it concise.", n, MaxRuleLength)}
	case strings.HasSuffix(trimmed, "?"):
		return &Error{Kind: KindQuestionForm, Rule: n,
			Message: fmt.Sprintf(`Rule %d should be a statement, not a question. Example: "Document must have..." instead of "Does document have...?"`, n)}
	case countLetters(rule) < MinLetters:
		return &Error{Kind: KindNotMeaningful, Rule: n, Message: fmt.Sprintf("Rule %d must contain meaningful text", n)}
	}
	return nil
}

// ValidateRuleSet checks shape, per-rule form and pairwise distinctness.
// Per-rule checks stop at the first violation.
func ValidateRuleSet(rules []string) error {
	if len(rules) != RuleCount {
		return &Error{Kind: KindWrongCount, Message: fmt.Sprintf("Exactly %d rules are required", RuleCount)}
	}

	for i, rule := range rules {
		if err := ValidateRule(rule, i); err != nil {
			return err
		}
	}

	normalized := make([]string, len(rules))
	seen := make(map[string]bool, len(rules))
	for i, rule := range rules {
		normalized[i] = normalizeRule(rule)
		if seen[normalized[i]] {
			return &Error{Kind: KindDuplicate, Message: "Duplicate rules detected. Each rule must be unique."}
		}
		seen[normalized[i]] = true
	}

	for i := 0; i < len(normalized); i++ {
		for j := i + 1; j < len(normalized); j++ {
			if Similarity(normalized[i], normalized[j]) > SimilarityThreshold {
				return &Error{Kind: KindSimilar, Rule: i + 1, Other: j + 1,
					Message: fmt.Sprintf("Rules %d and %d are too similar. Make them more distinct.", i+1, j+1)}
			}
		}
	}

	return nil
}

// Similarity returns 1 - editDistance/maxLen over runes, in [0, 1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.Distance(a, b, nil)
	return float64(longest-dist) / float64(longest)
}

// normalizeRule trims and case-folds a rule for comparison
func normalizeRule(rule string) string {
	return cases.Fold().String(strings.TrimSpace(rule))
}

// countLetters counts ASCII letters only
func countLetters(s string) int {
	count := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			count++
		}
	}
	return count
}
