package llm

import (
	"testing"

	"github.com/ppiankov/docucheck/internal/model"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "  ```json{\"a\":1}```  ", want: `{"a":1}`},
	}

	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 42, want: 42},
		{in: 87.6, want: 88},
		{in: 100, want: 100},
		{in: 150, want: 100},
		{in: 100.4, want: 100},
	}

	for _, tt := range tests {
		if got := ClampConfidence(tt.in); got != tt.want {
			t.Errorf("ClampConfidence(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseJudgment_StrictReply(t *testing.T) {
	parsed, err := parseJudgment("rule text", "```json\n"+`{"status":"pass","evidence":"Dated 1 May.","reasoning":"A date is present.","confidence":87.6}`+"\n```")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	result := parsed.result
	if result.Coerced || parsed.mismatch != nil {
		t.Errorf("Expected conforming reply to be read as-is, mismatch=%v", parsed.mismatch)
	}
	if result.Status != model.StatusPass || result.Evidence != "Dated 1 May." || result.Reasoning != "A date is present." {
		t.Errorf("Unexpected result %+v", result)
	}
	if result.Confidence != 88 {
		t.Errorf("Expected rounded confidence 88, got %d", result.Confidence)
	}
	if result.Rule != "rule text" {
		t.Errorf("Expected rule echo, got %q", result.Rule)
	}
}

func TestParseJudgment_Coercion(t *testing.T) {
	parsed, err := parseJudgment("rule text", `{"status":"Pass","evidence":"","reasoning":7,"confidence":"64"}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	result := parsed.result

	if !result.Coerced || parsed.mismatch == nil {
		t.Error("Expected reply outside the schema to be marked coerced")
	}
	if result.Status != model.StatusPass {
		t.Errorf("Expected pass, got %s", result.Status)
	}
	if result.Evidence != MissingEvidence {
		t.Errorf("Expected placeholder evidence, got %q", result.Evidence)
	}
	if result.Reasoning != "7" {
		t.Errorf("Expected numeric reasoning rendered as text, got %q", result.Reasoning)
	}
	if result.Confidence != 64 {
		t.Errorf("Expected numeric string confidence to parse, got %d", result.Confidence)
	}
}

func TestParseJudgment_NeverDefaultsToPass(t *testing.T) {
	for _, content := range []string{
		`{}`,
		`{"status":null}`,
		`{"status":true}`,
		`{"status":"passed"}`,
		`{"status":" pass "}`,
		`"pass"`,
		`["pass"]`,
	} {
		parsed, err := parseJudgment("r", content)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", content, err)
		}
		if parsed.result.Status != model.StatusFail {
			t.Errorf("Expected fail for %s, got %s", content, parsed.result.Status)
		}
		if !parsed.result.Coerced {
			t.Errorf("Expected %s to be marked coerced", content)
		}
	}
}

func TestParseJudgment_NonObjectUsesPlaceholders(t *testing.T) {
	for _, content := range []string{`"pass"`, `42`, `[{"status":"pass"}]`, `null`} {
		parsed, err := parseJudgment("r", content)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", content, err)
		}
		result := parsed.result
		if result.Evidence != MissingEvidence || result.Reasoning != MissingReasoning || result.Confidence != 0 {
			t.Errorf("Expected placeholders for %s, got %+v", content, result)
		}
	}
}

func TestParseJudgment_Errors(t *testing.T) {
	for _, content := range []string{"", "not json", `{"status":"pass"`} {
		if _, err := parseJudgment("r", content); err == nil {
			t.Errorf("Expected error for %q", content)
		}
	}
}

func TestModels(t *testing.T) {
	models := Models()
	if len(models) == 0 {
		t.Fatal("Expected a non-empty catalog")
	}
	if DefaultModel() != models[0].ID {
		t.Errorf("Expected default model to be first catalog entry")
	}

	models[0].ID = "mutated"
	if Models()[0].ID == "mutated" {
		t.Error("Models must return a copy")
	}
}
