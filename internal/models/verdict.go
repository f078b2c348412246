package models

import (
	"time"
)

type PolicyDecision string

const (
	DecisionClean   PolicyDecision = "clean"
	DecisionFlagged PolicyDecision = "flagged"
)

func (d PolicyDecision) String() string {
	return string(d)
}

// SimilarityVerdict is the outcome of comparing one submission against its
// corpus partition. Score is a percentage in [0, 100] rounded to two
// decimals. ComparedCount == 0 means nothing could be compared (empty
// partition or no extractable text), which is distinct from a confirmed
// clean result; SkippedCount counts corpus members that could not be read
// or decoded during the scan.
type SimilarityVerdict struct {
	ID               string         `json:"id" db:"id"`
	SubmissionID     string         `json:"submission_id" db:"submission_id"`
	BestMatchID      *string        `json:"best_match_id,omitempty" db:"best_match_id"`
	Score            float64        `json:"score" db:"score"`
	ComparedCount    int            `json:"compared_count" db:"compared_count"`
	SkippedCount     int            `json:"skipped_count" db:"skipped_count"`
	Decision         PolicyDecision `json:"decision" db:"decision"`
	ProcessingTimeMs int            `json:"processing_time_ms" db:"processing_time_ms"`
	AnalyzedAt       time.Time      `json:"analyzed_at" db:"analyzed_at"`
}

// Flagged reports whether the verdict crossed the policy threshold.
func (v *SimilarityVerdict) Flagged() bool {
	return v.Decision == DecisionFlagged
}
