package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/integrity-service/internal/models"
	"github.com/campusworks/integrity-service/internal/repository"
	"github.com/campusworks/integrity-service/internal/service/analyzer"
	"github.com/campusworks/integrity-service/internal/worker/queue"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrVerdictNotFound    = errors.New("verdict not found")
	ErrEmptyPayload       = errors.New("payload is empty")
)

type IntegrityService interface {
	Submit(ctx context.Context, input SubmitInput) (*models.SubmitResponse, error)
	Analyze(ctx context.Context, submissionID string) (*models.SimilarityVerdict, error)
	GetSubmission(ctx context.Context, submissionID string) (*models.Submission, error)
	GetVerdict(ctx context.Context, submissionID string) (*models.GetVerdictResponse, error)
	SearchVerdicts(ctx context.Context, req *models.SearchVerdictsRequest) (*models.SearchVerdictsResponse, error)
	PartitionStats(ctx context.Context, partitionKey string) (*models.PartitionStatsResponse, error)
	GetServiceStatus(ctx context.Context) (*models.HealthCheckResponse, error)
}

// SubmitInput carries one uploaded document into the pipeline. Async selects
// queued analysis over inline analysis; the stored submission is identical
// either way.
type SubmitInput struct {
	PartitionKey string
	SubmitterID  string
	Filename     string
	Payload      []byte
	Async        bool
}

type IntegrityServiceConfig struct {
	SimilarityThreshold float64
	Exchange            string
	SubmissionRouting   string
	CompletedRouting    string
	FailedRouting       string
}

type integrityService struct {
	submissionRepo repository.SubmissionRepository
	verdictRepo    repository.VerdictRepository
	objectStore    repository.ObjectStore
	rabbitRepo     repository.RabbitMQRepository
	publisher      queue.RabbitMQPublisher
	extractors     *analyzer.ExtractorRegistry
	engine         analyzer.Engine
	policy         analyzer.Policy
	logger         zerolog.Logger
	config         IntegrityServiceConfig
	startedAt      time.Time
}

func NewIntegrityService(
	submissionRepo repository.SubmissionRepository,
	verdictRepo repository.VerdictRepository,
	objectStore repository.ObjectStore,
	rabbitRepo repository.RabbitMQRepository,
	publisher queue.RabbitMQPublisher,
	extractors *analyzer.ExtractorRegistry,
	engine analyzer.Engine,
	policy analyzer.Policy,
	logger zerolog.Logger,
	config IntegrityServiceConfig,
) IntegrityService {
	return &integrityService{
		submissionRepo: submissionRepo,
		verdictRepo:    verdictRepo,
		objectStore:    objectStore,
		rabbitRepo:     rabbitRepo,
		publisher:      publisher,
		extractors:     extractors,
		engine:         engine,
		policy:         policy,
		logger:         logger,
		config:         config,
		startedAt:      time.Now(),
	}
}

func (s *integrityService) Submit(ctx context.Context, input SubmitInput) (*models.SubmitResponse, error) {
	if input.PartitionKey == "" || input.SubmitterID == "" {
		return nil, fmt.Errorf("%w: partition key and submitter id are required", analyzer.ErrInvalidInput)
	}
	if len(input.Payload) == 0 {
		return nil, ErrEmptyPayload
	}

	submission := &models.Submission{
		ID:           uuid.New().String(),
		PartitionKey: input.PartitionKey,
		SubmitterID:  input.SubmitterID,
		Filename:     input.Filename,
		Format:       analyzer.NormalizeFormat(filepath.Ext(input.Filename)),
		Digest:       analyzer.DigestBytes(input.Payload),
		SizeBytes:    int64(len(input.Payload)),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.objectStore.Put(ctx, submission.ID, input.Payload); err != nil {
		return nil, fmt.Errorf("failed to store payload: %w", err)
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		// Orphaned payloads are harmless; remove best-effort.
		if rmErr := s.objectStore.Remove(ctx, submission.ID); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("submission_id", submission.ID).Msg("Failed to remove orphaned payload")
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("partition_key", submission.PartitionKey).
		Str("format", submission.Format).
		Int64("size_bytes", submission.SizeBytes).
		Bool("async", input.Async).
		Msg("Submission stored")

	if input.Async {
		event := models.SubmissionReceivedEvent{
			SubmissionID: submission.ID,
			PartitionKey: submission.PartitionKey,
			SubmitterID:  submission.SubmitterID,
			Format:       submission.Format,
			Timestamp:    time.Now().Unix(),
		}
		if err := s.publisher.PublishJSON(ctx, s.config.Exchange, s.config.SubmissionRouting, event); err != nil {
			return nil, fmt.Errorf("failed to queue analysis: %w", err)
		}
		return &models.SubmitResponse{Submission: *submission, Async: true}, nil
	}

	verdict, err := s.Analyze(ctx, submission.ID)
	if err != nil {
		return nil, err
	}

	return &models.SubmitResponse{Submission: *submission, Verdict: verdict}, nil
}

// Analyze runs the full integrity check for a stored submission: extract its
// text, scan the partition for the best match, classify against the policy
// threshold, and persist the verdict. Re-running produces a fresh verdict row
// with the same score against the same corpus state.
func (s *integrityService) Analyze(ctx context.Context, submissionID string) (*models.SimilarityVerdict, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	payload, err := s.objectStore.Get(ctx, submissionID)
	if err != nil {
		s.publishFailed(ctx, submissionID, err)
		return nil, fmt.Errorf("failed to load payload: %w", err)
	}

	subject := analyzer.Subject{
		ID:           submission.ID,
		PartitionKey: submission.PartitionKey,
		Digest:       submission.Digest,
		Text:         s.extractors.ExtractText(payload, submission.Format),
	}

	verdict, err := s.engine.FindBestMatch(ctx, subject, &corpusReader{
		submissions: s.submissionRepo,
		store:       s.objectStore,
	})
	if err != nil {
		s.publishFailed(ctx, submissionID, err)
		return nil, fmt.Errorf("corpus scan failed: %w", err)
	}

	verdict.ID = uuid.New().String()
	verdict.Decision = s.policy.Decide(verdict)

	if err := s.verdictRepo.Create(ctx, verdict); err != nil {
		return nil, fmt.Errorf("failed to persist verdict: %w", err)
	}

	event := models.AnalysisCompletedEvent{
		SubmissionID:   verdict.SubmissionID,
		VerdictID:      verdict.ID,
		Decision:       verdict.Decision,
		BestMatchID:    verdict.BestMatchID,
		Score:          verdict.Score,
		ComparedCount:  verdict.ComparedCount,
		SkippedCount:   verdict.SkippedCount,
		ProcessingTime: verdict.ProcessingTimeMs,
		CompletedAt:    time.Now(),
	}
	if err := s.publisher.PublishJSON(ctx, s.config.Exchange, s.config.CompletedRouting, event); err != nil {
		s.logger.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to publish analysis completed event")
	}

	s.logger.Info().
		Str("submission_id", submissionID).
		Str("verdict_id", verdict.ID).
		Str("decision", verdict.Decision.String()).
		Float64("score", verdict.Score).
		Int("compared_count", verdict.ComparedCount).
		Msg("Analysis completed")

	return verdict, nil
}

func (s *integrityService) GetSubmission(ctx context.Context, submissionID string) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *integrityService) GetVerdict(ctx context.Context, submissionID string) (*models.GetVerdictResponse, error) {
	verdict, err := s.verdictRepo.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verdict: %w", err)
	}
	if verdict == nil {
		return nil, ErrVerdictNotFound
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	response := &models.GetVerdictResponse{
		VerdictID:        verdict.ID,
		SubmissionID:     verdict.SubmissionID,
		BestMatchID:      verdict.BestMatchID,
		Score:            verdict.Score,
		ComparedCount:    verdict.ComparedCount,
		SkippedCount:     verdict.SkippedCount,
		Decision:         verdict.Decision,
		ProcessingTimeMs: verdict.ProcessingTimeMs,
		AnalyzedAt:       verdict.AnalyzedAt,
	}
	if submission != nil {
		response.PartitionKey = submission.PartitionKey
		response.SubmitterID = submission.SubmitterID
	}

	return response, nil
}

func (s *integrityService) SearchVerdicts(ctx context.Context, req *models.SearchVerdictsRequest) (*models.SearchVerdictsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
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
	if req.DateFrom != nil {
		filters["date_from"] = *req.DateFrom
	}
	if req.DateTo != nil {
		filters["date_to"] = *req.DateTo
	}

	offset := (req.Page - 1) * req.Limit
	verdicts, total, err := s.verdictRepo.Search(ctx, filters, req.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search verdicts: %w", err)
	}

	results := make([]models.GetVerdictResponse, 0, len(verdicts))
	for _, v := range verdicts {
		results = append(results, models.GetVerdictResponse{
			VerdictID:        v.ID,
			SubmissionID:     v.SubmissionID,
			BestMatchID:      v.BestMatchID,
			Score:            v.Score,
			ComparedCount:    v.ComparedCount,
			SkippedCount:     v.SkippedCount,
			Decision:         v.Decision,
			ProcessingTimeMs: v.ProcessingTimeMs,
			AnalyzedAt:       v.AnalyzedAt,
		})
	}

	totalPages := total / req.Limit
	if total%req.Limit != 0 {
		totalPages++
	}

	return &models.SearchVerdictsResponse{
		Verdicts:   results,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *integrityService) PartitionStats(ctx context.Context, partitionKey string) (*models.PartitionStatsResponse, error) {
	stats, err := s.verdictRepo.PartitionStats(ctx, partitionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get partition stats: %w", err)
	}
	return stats, nil
}

func (s *integrityService) GetServiceStatus(ctx context.Context) (*models.HealthCheckResponse, error) {
	dbOK := true
	if err := s.submissionRepo.Ping(ctx); err != nil {
		dbOK = false
		s.logger.Error().Err(err).Msg("Database health check failed")
	}

	storeOK := true
	if err := s.objectStore.Ping(ctx); err != nil {
		storeOK = false
		s.logger.Error().Err(err).Msg("Object store health check failed")
	}

	rabbitOK := s.rabbitRepo.IsConnected()

	response := &models.HealthCheckResponse{
		Status:      "healthy",
		Database:    dbOK,
		ObjectStore: storeOK,
		RabbitMQ:    rabbitOK,
		Uptime:      time.Since(s.startedAt).Round(time.Second).String(),
		Timestamp:   time.Now(),
	}

	if !dbOK || !storeOK || !rabbitOK {
		response.Status = "degraded"
	}

	return response, nil
}

func (s *integrityService) publishFailed(ctx context.Context, submissionID string, cause error) {
	event := models.AnalysisFailedEvent{
		SubmissionID: submissionID,
		Error:        cause.Error(),
		FailedAt:     time.Now(),
	}
	if err := s.publisher.PublishJSON(ctx, s.config.Exchange, s.config.FailedRouting, event); err != nil {
		s.logger.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to publish analysis failed event")
	}
}

// corpusReader adapts the submission repository and object store to the
// analyzer's view of the corpus.
type corpusReader struct {
	submissions repository.SubmissionRepository
	store       repository.ObjectStore
}

func (c *corpusReader) Partition(ctx context.Context, partitionKey, excludeID string) ([]models.CorpusRef, error) {
	return c.submissions.ListPartition(ctx, partitionKey, excludeID)
}

func (c *corpusReader) Payload(ctx context.Context, id string) ([]byte, error) {
	return c.store.Get(ctx, id)
}
