package analyzer

import (
	"testing"

	"github.com/campusworks/integrity-service/internal/models"
)

func TestPolicyDecide(t *testing.T) {
	matchID := "match-1"
	policy := NewPolicy(50.0)

	cases := []struct {
		name    string
		verdict models.SimilarityVerdict
		want    models.PolicyDecision
	}{
		{"above threshold", models.SimilarityVerdict{Score: 80.0, BestMatchID: &matchID}, models.DecisionFlagged},
		{"exactly at threshold", models.SimilarityVerdict{Score: 50.0, BestMatchID: &matchID}, models.DecisionFlagged},
		{"just below threshold", models.SimilarityVerdict{Score: 49.99, BestMatchID: &matchID}, models.DecisionClean},
		{"zero score", models.SimilarityVerdict{Score: 0.0}, models.DecisionClean},
		{"high score without match", models.SimilarityVerdict{Score: 90.0}, models.DecisionClean},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Decide(&tc.verdict); got != tc.want {
				t.Errorf("Decide(score=%v) = %s, want %s", tc.verdict.Score, got, tc.want)
			}
		})
	}
}

func TestNewPolicyDefaultThreshold(t *testing.T) {
	for _, threshold := range []float64{0, -5} {
		policy := NewPolicy(threshold)
		if policy.Threshold != DefaultThreshold {
			t.Errorf("NewPolicy(%v).Threshold = %v, want %v", threshold, policy.Threshold, DefaultThreshold)
		}
	}

	if policy := NewPolicy(75.0); policy.Threshold != 75.0 {
		t.Errorf("NewPolicy(75).Threshold = %v, want 75", policy.Threshold)
	}
}
