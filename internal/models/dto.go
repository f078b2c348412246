package models

import "time"

// Data Transfer Objects

type CheckSubmissionRequest struct {
	SubmissionID string `json:"submission_id" validate:"required"`
	PartitionKey string `json:"partition_key" validate:"required"`
}

type SubmitResponse struct {
	Submission Submission         `json:"submission"`
	Verdict    *SimilarityVerdict `json:"verdict,omitempty"`
	Async      bool               `json:"async"`
}

type GetVerdictResponse struct {
	VerdictID        string         `json:"verdict_id"`
	SubmissionID     string         `json:"submission_id"`
	PartitionKey     string         `json:"partition_key"`
	SubmitterID      string         `json:"submitter_id,omitempty"`
	BestMatchID      *string        `json:"best_match_id,omitempty"`
	Score            float64        `json:"score"`
	ComparedCount    int            `json:"compared_count"`
	SkippedCount     int            `json:"skipped_count"`
	Decision         PolicyDecision `json:"decision"`
	ProcessingTimeMs int            `json:"processing_time_ms"`
	AnalyzedAt       time.Time      `json:"analyzed_at"`
}

type SearchVerdictsRequest struct {
	PartitionKey *string         `json:"partition_key,omitempty"`
	SubmitterID  *string         `json:"submitter_id,omitempty"`
	Decision     *PolicyDecision `json:"decision,omitempty"`
	MinScore     *float64        `json:"min_score,omitempty"`
	DateFrom     *string         `json:"date_from,omitempty"`
	DateTo       *string         `json:"date_to,omitempty"`
	Page         int             `json:"page" validate:"min=1"`
	Limit        int             `json:"limit" validate:"min=1,max=100"`
}

type SearchVerdictsResponse struct {
	Verdicts   []GetVerdictResponse `json:"verdicts"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

type PartitionStatsResponse struct {
	PartitionKey     string     `json:"partition_key"`
	TotalSubmissions int        `json:"total_submissions"`
	AnalyzedCount    int        `json:"analyzed_count"`
	FlaggedCount     int        `json:"flagged_count"`
	AvgScore         float64    `json:"avg_score"`
	LastAnalyzedAt   *time.Time `json:"last_analyzed_at,omitempty"`
}

type HealthCheckResponse struct {
	Status        string    `json:"status"`
	Database      bool      `json:"database"`
	ObjectStore   bool      `json:"object_store"`
	RabbitMQ      bool      `json:"rabbitmq"`
	ActiveWorkers int       `json:"active_workers"`
	QueueLength   int       `json:"queue_length"`
	Uptime        string    `json:"uptime"`
	Timestamp     time.Time `json:"timestamp"`
}
