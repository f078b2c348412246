package models

import (
	"time"
)

type EvidenceRowKind string

const (
	RowMatch     EvidenceRowKind = "match"
	RowLeftOnly  EvidenceRowKind = "left_only"
	RowRightOnly EvidenceRowKind = "right_only"
)

// EvidenceRow is one line of the aligned side-by-side view. Line numbers are
// 1-based; a zero line number means that side has no line in this row.
type EvidenceRow struct {
	Kind      EvidenceRowKind `json:"kind"`
	LeftLine  int             `json:"left_line,omitempty"`
	RightLine int             `json:"right_line,omitempty"`
	LeftText  string          `json:"left_text,omitempty"`
	RightText string          `json:"right_text,omitempty"`
}

// LineRange is an inclusive 1-based range of line numbers.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// EvidenceMeta annotates a report with the participants and the score the
// similarity engine produced for the same pair of texts.
type EvidenceMeta struct {
	LeftID           string    `json:"left_id"`
	RightID          string    `json:"right_id"`
	LeftSubmitter    string    `json:"left_submitter,omitempty"`
	RightSubmitter   string    `json:"right_submitter,omitempty"`
	LeftSubmittedAt  time.Time `json:"left_submitted_at,omitempty"`
	RightSubmittedAt time.Time `json:"right_submitted_at,omitempty"`
	Score            float64   `json:"score"`
}

// EvidenceReport is the structured diff a reviewer sees for a flagged pair.
// It is regenerable on demand from the stored payloads and carries enough
// structure (rows plus matched ranges per side) for any presentation layer
// to render it without recomputing the alignment.
type EvidenceReport struct {
	Meta         EvidenceMeta  `json:"meta"`
	Sufficient   bool          `json:"sufficient"`
	Reason       string        `json:"reason,omitempty"`
	Rows         []EvidenceRow `json:"rows,omitempty"`
	LeftMatched  []LineRange   `json:"left_matched,omitempty"`
	RightMatched []LineRange   `json:"right_matched,omitempty"`
	MatchedLines int           `json:"matched_lines"`
	LeftLines    int           `json:"left_lines"`
	RightLines   int           `json:"right_lines"`
	GeneratedAt  time.Time     `json:"generated_at"`
}
