package service

import "github.com/1300Sarthak/CS157a/internal/models"

// outcomeAggregator collects per-course outcomes in input order.
type outcomeAggregator struct {
	outcomes []models.CourseOutcome
}

func (a *outcomeAggregator) record(outcome models.CourseOutcome) {
	a.outcomes = append(a.outcomes, outcome)
}

// verdict is AllSucceeded only when something was recorded and every outcome
// is a success.
func (a *outcomeAggregator) verdict() models.BatchVerdict {
	if len(a.outcomes) == 0 {
		return models.VerdictHasFailures
	}
	for _, o := range a.outcomes {
		if o.Classification != models.ClassificationSuccess {
			return models.VerdictHasFailures
		}
	}
	return models.VerdictAllSucceeded
}

func (a *outcomeAggregator) list() []models.CourseOutcome {
	out := make([]models.CourseOutcome, len(a.outcomes))
	copy(out, a.outcomes)
	return out
}
