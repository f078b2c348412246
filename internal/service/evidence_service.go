package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/campusworks/integrity-service/internal/models"
	"github.com/campusworks/integrity-service/internal/repository"
	"github.com/campusworks/integrity-service/internal/service/analyzer"
)

type EvidenceService interface {
	GetEvidence(ctx context.Context, leftID, rightID string) (*models.EvidenceReport, error)
	GetEvidenceForVerdict(ctx context.Context, submissionID string) (*models.EvidenceReport, error)
	ExportVerdictsCSV(ctx context.Context, req *models.SearchVerdictsRequest) ([]byte, error)
}

type evidenceService struct {
	submissionRepo repository.SubmissionRepository
	verdictRepo    repository.VerdictRepository
	objectStore    repository.ObjectStore
	extractors     *analyzer.ExtractorRegistry
	engine         analyzer.Engine
	logger         zerolog.Logger
}

func NewEvidenceService(
	submissionRepo repository.SubmissionRepository,
	verdictRepo repository.VerdictRepository,
	objectStore repository.ObjectStore,
	extractors *analyzer.ExtractorRegistry,
	engine analyzer.Engine,
	logger zerolog.Logger,
) EvidenceService {
	return &evidenceService{
		submissionRepo: submissionRepo,
		verdictRepo:    verdictRepo,
		objectStore:    objectStore,
		extractors:     extractors,
		engine:         engine,
		logger:         logger,
	}
}

// GetEvidence regenerates the side-by-side report for an arbitrary pair of
// stored submissions. The score in the report metadata is recomputed from the
// extracted texts, so it always agrees with the rendered alignment.
func (s *evidenceService) GetEvidence(ctx context.Context, leftID, rightID string) (*models.EvidenceReport, error) {
	left, leftText, err := s.loadExtracted(ctx, leftID)
	if err != nil {
		return nil, err
	}
	right, rightText, err := s.loadExtracted(ctx, rightID)
	if err != nil {
		return nil, err
	}

	meta := models.EvidenceMeta{
		LeftID:           left.ID,
		RightID:          right.ID,
		LeftSubmitter:    left.SubmitterID,
		RightSubmitter:   right.SubmitterID,
		LeftSubmittedAt:  left.CreatedAt,
		RightSubmittedAt: right.CreatedAt,
		Score:            s.engine.Compare(leftText, rightText),
	}

	return analyzer.RenderEvidence(leftText, rightText, meta), nil
}

// GetEvidenceForVerdict renders evidence for a submission against the best
// match its latest verdict recorded. Verdicts without a best match carry no
// pair to align, so the report is refused rather than rendered empty.
func (s *evidenceService) GetEvidenceForVerdict(ctx context.Context, submissionID string) (*models.EvidenceReport, error) {
	verdict, err := s.verdictRepo.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verdict: %w", err)
	}
	if verdict == nil {
		return nil, ErrVerdictNotFound
	}
	if verdict.BestMatchID == nil {
		return nil, fmt.Errorf("%w: verdict has no best match", ErrVerdictNotFound)
	}

	return s.GetEvidence(ctx, submissionID, *verdict.BestMatchID)
}

func (s *evidenceService) ExportVerdictsCSV(ctx context.Context, req *models.SearchVerdictsRequest) ([]byte, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 1000 {
		req.Limit = 1000
	}

	filters := make(map[string]interface{})
	if req.PartitionKey != nil {
		filters["partition_key"] = *req.PartitionKey
	}
	if req.SubmitterID != nil {
		filters["submitter_id"] = *req.SubmitterID
	}
	if req.Decision != nil {
		filters["decision"] = req.Decision.String()
	}
	if req.MinScore != nil {
		filters["min_score"] = *req.MinScore
	}

	offset := (req.Page - 1) * req.Limit
	verdicts, _, err := s.verdictRepo.Search(ctx, filters, req.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search verdicts: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"verdict_id", "submission_id", "best_match_id", "score", "compared_count", "skipped_count", "decision", "analyzed_at"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, v := range verdicts {
		bestMatch := ""
		if v.BestMatchID != nil {
			bestMatch = *v.BestMatchID
		}
		record := []string{
			v.ID,
			v.SubmissionID,
			bestMatch,
			strconv.FormatFloat(v.Score, 'f', 2, 64),
			strconv.Itoa(v.ComparedCount),
			strconv.Itoa(v.SkippedCount),
			v.Decision.String(),
			v.AnalyzedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *evidenceService) loadExtracted(ctx context.Context, submissionID string) (*models.Submission, string, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load submission: %w", err)
	}
	if submission == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrSubmissionNotFound, submissionID)
	}

	payload, err := s.objectStore.Get(ctx, submissionID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load payload: %w", err)
	}

	return submission, s.extractors.ExtractText(payload, submission.Format), nil
}
