package scheduler

import (
	"math"

	"github.com/dosewise/dosewise/internal/constants"
)

// computeConfidence combines profile coverage and binary-rule satisfaction
// into the overall 0-100 score. Either ratio is vacuously 1 when nothing
// applies, so an empty or rule-free run scores the maximum.
func computeConfidence(matched, totalItems, satisfiedBinary, totalBinary int) int {
	coverage := 1.0
	if totalItems > 0 {
		coverage = float64(matched) / float64(totalItems)
	}

	satisfaction := 1.0
	if totalBinary > 0 {
		satisfaction = float64(satisfiedBinary) / float64(totalBinary)
	}

	score := coverage*constants.CoverageWeight + satisfaction*constants.SatisfactionWeight
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}
