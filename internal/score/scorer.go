package score

import (
	"math"

	"github.com/ppiankov/docucheck/internal/model"
)

// Verdict thresholds on the pass percentage
const (
	CompliantScore = 100
	PartialScore   = 50
)

// Scorer aggregates rule results into session statistics
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate counts passes and failures, the pass percentage, the mean
// confidence and the overall verdict
func (s *Scorer) Calculate(results []model.CheckResult) model.Stats {
	stats := model.Stats{
		Total:   len(results),
		Verdict: model.VerdictNonCompliant,
	}
	if stats.Total == 0 {
		return stats
	}

	confidenceSum := 0
	for _, r := range results {
		if r.Passed() {
			stats.Passed++
		} else {
			stats.Failed++
			stats.FailedRules = append(stats.FailedRules, r.Rule)
		}
		if r.Coerced {
			stats.Coerced++
		}
		confidenceSum += r.Confidence
	}

	stats.Score = roundPercent(stats.Passed, stats.Total)
	stats.AverageConfidence = int(math.Round(float64(confidenceSum) / float64(stats.Total)))
	stats.Verdict = s.determineVerdict(stats.Score)

	return stats
}

func (s *Scorer) determineVerdict(score int) model.Verdict {
	switch {
	case score >= CompliantScore:
		return model.VerdictCompliant
	case score >= PartialScore:
		return model.VerdictPartial
	default:
		return model.VerdictNonCompliant
	}
}

func roundPercent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
