package adjudicate

import "github.com/ppiankov/stipcheck/internal/model"

// Summarize folds verdicts into a run summary. The fold is commutative:
// shuffling the input yields an identical summary. A verdict with an unknown
// or absent status counts as unclear, never silently dropped.
func Summarize(verdicts []model.Verdict) model.RunSummary {
	s := model.RunSummary{Total: len(verdicts)}

	for _, v := range verdicts {
		switch v.Status {
		case model.StatusPass:
			s.Passed++
		case model.StatusFail:
			s.Failed++
		case model.StatusError:
			s.Errors++
		default:
			// AMBIGUOUS and anything unrecognized
			s.Unclear++
		}
	}

	return s
}
