package adjudicate

import "strings"

var (
	certaintyIndicators   = []string{"clearly", "definitely", "explicitly", "states that"}
	uncertaintyIndicators = []string{"may", "might", "unclear", "ambiguous", "possibly"}
)

// ConfidenceScore estimates how certain the oracle's reasoning sounds,
// from the balance of certainty and hedging vocabulary. It is a display
// heuristic only and never changes a verdict. Returns 0.5 when the text
// carries no indicators either way.
func ConfidenceScore(reasoning string) float64 {
	lower := strings.ToLower(reasoning)

	var certain, uncertain int
	for _, w := range certaintyIndicators {
		if strings.Contains(lower, w) {
			certain++
		}
	}
	for _, w := range uncertaintyIndicators {
		if strings.Contains(lower, w) {
			uncertain++
		}
	}

	if certain+uncertain == 0 {
		return 0.5
	}
	return float64(certain) / float64(certain+uncertain)
}
