package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/docucheck/internal/model"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// judgmentSchema is the reply shape the system prompt asks for
const judgmentSchema = `{
  "type": "object",
  "required": ["status", "evidence", "reasoning", "confidence"],
  "properties": {
    "status": {"type": "string", "enum": ["pass", "fail"]},
    "evidence": {"type": "string", "minLength": 1},
    "reasoning": {"type": "string", "minLength": 1},
    "confidence": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`

var replySchema = jsonschema.MustCompileString("judgment.json", judgmentSchema)

// strictReply is a reply that passed judgmentSchema
type strictReply struct {
	Status     model.Status `json:"status"`
	Evidence   string       `json:"evidence"`
	Reasoning  string       `json:"reasoning"`
	Confidence float64      `json:"confidence"`
}

// judgment is a parsed reply. mismatch explains why a coerced reply did
// not pass judgmentSchema.
type judgment struct {
	result   model.CheckResult
	mismatch error
}

// StripCodeFences removes ```json and ``` markers a model may wrap its reply in
func StripCodeFences(content string) string {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// parseJudgment turns a raw completion into a CheckResult. Replies matching
// judgmentSchema are decoded as-is; any other JSON value is coerced field by
// field and marked Coerced. It fails only when the reply is not JSON.
func parseJudgment(rule, content string) (judgment, error) {
	body := []byte(StripCodeFences(content))

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return judgment{}, fmt.Errorf("parse LLM reply: %w", err)
	}

	mismatch := replySchema.Validate(raw)
	if mismatch == nil {
		var reply strictReply
		if err := json.Unmarshal(body, &reply); err == nil {
			return judgment{result: model.CheckResult{
				Rule:       rule,
				Status:     reply.Status,
				Evidence:   reply.Evidence,
				Reasoning:  reply.Reasoning,
				Confidence: ClampConfidence(reply.Confidence),
			}}, nil
		}
	}

	// Non-object replies have no usable fields and fall back to defaults
	fields, _ := raw.(map[string]any)
	result := coerceJudgment(rule, fields)
	result.Coerced = true
	return judgment{result: result, mismatch: mismatch}, nil
}

// coerceJudgment maps loosely typed fields with defaults. Anything other
// than an explicit "pass" is a fail.
func coerceJudgment(rule string, fields map[string]any) model.CheckResult {
	status := model.StatusFail
	if s, ok := fields["status"].(string); ok && strings.EqualFold(s, string(model.StatusPass)) {
		status = model.StatusPass
	}

	return model.CheckResult{
		Rule:       rule,
		Status:     status,
		Evidence:   textField(fields["evidence"], MissingEvidence),
		Reasoning:  textField(fields["reasoning"], MissingReasoning),
		Confidence: ClampConfidence(numberField(fields["confidence"])),
	}
}

// ClampConfidence rounds to the nearest integer and clamps into [0, 100]
func ClampConfidence(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func textField(v any, fallback string) string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fallback
}

func numberField(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil && !math.IsInf(f, 0) {
			return f
		}
	}
	return 0
}
