package analyzer

import (
	"github.com/campusworks/integrity-service/internal/models"
)

// DefaultThreshold is the flagging boundary the system shipped with.
// Deployments tune it through configuration, never by editing scoring code.
const DefaultThreshold = 50.0

// Policy is the only place that decides what counts as suspicious.
type Policy struct {
	Threshold float64
}

func NewPolicy(threshold float64) Policy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Policy{Threshold: threshold}
}

// Decide classifies a verdict against the threshold. Scores at or above the
// threshold flag the submission; a flagged decision always has a best-match
// back-reference, so an unmatched verdict stays clean regardless of score.
func (p Policy) Decide(v *models.SimilarityVerdict) models.PolicyDecision {
	if v.Score >= p.Threshold && v.BestMatchID != nil {
		return models.DecisionFlagged
	}
	return models.DecisionClean
}
