package models

import (
	"time"
)

type SubmissionReceivedEvent struct {
	SubmissionID string `json:"submission_id"`
	PartitionKey string `json:"partition_key"`
	SubmitterID  string `json:"submitter_id"`
	Format       string `json:"format"`
	Timestamp    int64  `json:"timestamp"`
}

type AnalysisCompletedEvent struct {
	SubmissionID   string         `json:"submission_id"`
	VerdictID      string         `json:"verdict_id"`
	Decision       PolicyDecision `json:"decision"`
	BestMatchID    *string        `json:"best_match_id,omitempty"`
	Score          float64        `json:"score"`
	ComparedCount  int            `json:"compared_count"`
	SkippedCount   int            `json:"skipped_count"`
	ProcessingTime int            `json:"processing_time_ms"`
	CompletedAt    time.Time      `json:"completed_at"`
}

type AnalysisFailedEvent struct {
	SubmissionID string    `json:"submission_id"`
	Error        string    `json:"error"`
	FailedAt     time.Time `json:"failed_at"`
}
