package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campusworks/integrity-service/internal/models"
	"github.com/rs/zerolog"
)

// CorpusReader is the host-supplied view of previously stored submissions.
// Partition lists comparison metadata for one partition key, excluding the
// subject itself; Payload fetches raw bytes for one member and may fail per
// item without aborting a scan.
type CorpusReader interface {
	Partition(ctx context.Context, partitionKey, excludeID string) ([]models.CorpusRef, error)
	Payload(ctx context.Context, id string) ([]byte, error)
}

// Subject is the already-hashed, already-extracted document being checked.
type Subject struct {
	ID           string
	PartitionKey string
	Digest       string
	Text         string
}

type Engine interface {
	Compare(a, b string) float64
	FindBestMatch(ctx context.Context, subject Subject, corpus CorpusReader) (*models.SimilarityVerdict, error)
}

type EngineConfig struct {
	MaxWorkers int
}

type engine struct {
	extractors *ExtractorRegistry
	cache      *ExtractionCache
	logger     zerolog.Logger
	config     EngineConfig
}

func NewEngine(
	extractors *ExtractorRegistry,
	cache *ExtractionCache,
	logger zerolog.Logger,
	config EngineConfig,
) Engine {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 1
	}
	return &engine{
		extractors: extractors,
		cache:      cache,
		logger:     logger,
		config:     config,
	}
}

func (e *engine) Compare(a, b string) float64 {
	return Compare(a, b)
}

type candidateScore struct {
	ref   models.CorpusRef
	score float64
}

// FindBestMatch scans every partition member and keeps the maximum score.
// An identical digest short-circuits to 100 before any text comparison.
// Unreadable or unextractable members are skipped and counted; an empty
// subject text skips the scan entirely. Ties on the maximum score resolve
// to the earliest-created member, then the smallest id, so repeated runs
// over the same corpus always name the same match.
func (e *engine) FindBestMatch(ctx context.Context, subject Subject, corpus CorpusReader) (*models.SimilarityVerdict, error) {
	if subject.ID == "" || subject.PartitionKey == "" {
		return nil, fmt.Errorf("%w: submission id and partition key are required", ErrInvalidInput)
	}

	startTime := time.Now()

	verdict := &models.SimilarityVerdict{
		SubmissionID: subject.ID,
		Score:        0.0,
		AnalyzedAt:   startTime,
	}

	refs, err := corpus.Partition(ctx, subject.PartitionKey, subject.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus partition: %w", err)
	}

	if len(refs) == 0 {
		e.logger.Info().
			Str("submission_id", subject.ID).
			Str("partition_key", subject.PartitionKey).
			Msg("Corpus partition is empty, nothing to compare")
		verdict.ProcessingTimeMs = int(time.Since(startTime).Milliseconds())
		return verdict, nil
	}

	if dup := earliestWithDigest(refs, subject.Digest); dup != nil {
		e.logger.Info().
			Str("submission_id", subject.ID).
			Str("matched_id", dup.ID).
			Msg("Identical digest found, short-circuiting to exact match")
		verdict.Score = 100.0
		verdict.BestMatchID = &dup.ID
		verdict.ComparedCount = 1
		verdict.ProcessingTimeMs = int(time.Since(startTime).Milliseconds())
		return verdict, nil
	}

	if subject.Text == "" {
		// No extractable content: an empty document cannot meaningfully
		// plagiarize or be plagiarized. ComparedCount stays 0 so the caller
		// can tell "could not analyze" apart from "confirmed clean".
		e.logger.Warn().
			Str("submission_id", subject.ID).
			Msg("Subject has no extractable text, skipping comparison")
		verdict.ProcessingTimeMs = int(time.Since(startTime).Milliseconds())
		return verdict, nil
	}

	scores, skipped, err := e.scanCandidates(ctx, subject, corpus, refs)
	if err != nil {
		return nil, err
	}

	var best *candidateScore
	for i := range scores {
		if best == nil || betterCandidate(&scores[i], best) {
			best = &scores[i]
		}
	}

	verdict.ComparedCount = len(scores)
	verdict.SkippedCount = skipped
	if best != nil && best.score > 0.0 {
		verdict.Score = best.score
		matchID := best.ref.ID
		verdict.BestMatchID = &matchID
	}
	verdict.ProcessingTimeMs = int(time.Since(startTime).Milliseconds())

	e.logger.Info().
		Str("submission_id", subject.ID).
		Float64("score", verdict.Score).
		Int("compared_count", verdict.ComparedCount).
		Int("skipped_count", verdict.SkippedCount).
		Int("processing_time_ms", verdict.ProcessingTimeMs).
		Msg("Corpus scan completed")

	return verdict, nil
}

// scanCandidates fans comparisons out across a bounded worker count. Each
// comparison is independent and read-only; the reduction over the collected
// scores happens in the caller under the deterministic tie-break.
func (e *engine) scanCandidates(
	ctx context.Context,
	subject Subject,
	corpus CorpusReader,
	refs []models.CorpusRef,
) ([]candidateScore, int, error) {
	jobs := make(chan models.CorpusRef)
	results := make(chan candidateScore, len(refs))

	var skipped int
	var skippedMu sync.Mutex
	var wg sync.WaitGroup

	workers := e.config.MaxWorkers
	if workers > len(refs) {
		workers = len(refs)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				text, ok := e.candidateText(ctx, corpus, ref)
				if !ok {
					skippedMu.Lock()
					skipped++
					skippedMu.Unlock()
					continue
				}

				select {
				case results <- candidateScore{ref: ref, score: Compare(subject.Text, text)}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, ref := range refs {
			select {
			case jobs <- ref:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var scores []candidateScore
	for {
		select {
		case <-ctx.Done():
			// Abandon in-flight comparisons; nothing partial is persisted.
			return nil, 0, ctx.Err()
		case result, ok := <-results:
			if !ok {
				// A cancelled scan may close results with only part of the
				// partition compared; a partial maximum is not a verdict.
				if err := ctx.Err(); err != nil {
					return nil, 0, err
				}
				skippedMu.Lock()
				total := skipped
				skippedMu.Unlock()
				return scores, total, nil
			}
			scores = append(scores, result)
		}
	}
}

// candidateText loads and extracts one corpus member, reading through the
// digest-keyed cache. A false return means this member is unusable for
// comparison (unreadable payload or no extractable text) and must be
// skipped rather than fail the scan.
func (e *engine) candidateText(ctx context.Context, corpus CorpusReader, ref models.CorpusRef) (string, bool) {
	text, err := e.cache.Get(ref.Digest, func() (string, error) {
		payload, err := corpus.Payload(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return e.extractors.ExtractText(payload, ref.Format), nil
	})
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("corpus_id", ref.ID).
			Msg("Failed to read corpus payload, skipping")
		return "", false
	}

	if text == "" {
		return "", false
	}
	return text, true
}

// earliestWithDigest returns the earliest-created ref with the given digest,
// or nil when none matches.
func earliestWithDigest(refs []models.CorpusRef, digest string) *models.CorpusRef {
	if digest == "" {
		return nil
	}
	var found *models.CorpusRef
	for i := range refs {
		if refs[i].Digest != digest {
			continue
		}
		if found == nil || refBefore(&refs[i], found) {
			found = &refs[i]
		}
	}
	return found
}

func betterCandidate(a, b *candidateScore) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return refBefore(&a.ref, &b.ref)
}

func refBefore(a, b *models.CorpusRef) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
