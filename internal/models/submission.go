package models

import (
	"time"
)

// Submission is the immutable record of one uploaded document. The raw
// payload lives in object storage keyed by the submission id; this struct
// only carries metadata. Once created it is never mutated; a resubmission
// always gets a fresh id.
type Submission struct {
	ID           string    `json:"id" db:"id"`
	PartitionKey string    `json:"partition_key" db:"partition_key"`
	SubmitterID  string    `json:"submitter_id" db:"submitter_id"`
	Filename     string    `json:"filename" db:"filename"`
	Format       string    `json:"format" db:"format"`
	Digest       string    `json:"digest" db:"digest"`
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CorpusRef is the comparison-relevant slice of a stored submission, as
// listed when scanning a partition. Payload bytes are fetched separately
// and may fail per item without aborting the scan.
type CorpusRef struct {
	ID        string    `json:"id"`
	Digest    string    `json:"digest"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}
