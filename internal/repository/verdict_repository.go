package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/integrity-service/internal/models"
)

type VerdictRepository interface {
	Create(ctx context.Context, verdict *models.SimilarityVerdict) error
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.SimilarityVerdict, error)
	Search(ctx context.Context, filters map[string]interface{}, limit, offset int) ([]models.SimilarityVerdict, int, error)
	PartitionStats(ctx context.Context, partitionKey string) (*models.PartitionStatsResponse, error)
}

type verdictRepository struct {
	*PostgresRepository
}

func NewVerdictRepository(db *sql.DB, logger zerolog.Logger) VerdictRepository {
	return &verdictRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *verdictRepository) Create(ctx context.Context, verdict *models.SimilarityVerdict) error {
	query := `
		INSERT INTO verdicts (id, submission_id, best_match_id, score, compared_count, skipped_count, decision, processing_time_ms, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		verdict.ID,
		verdict.SubmissionID,
		verdict.BestMatchID,
		verdict.Score,
		verdict.ComparedCount,
		verdict.SkippedCount,
		verdict.Decision.String(),
		verdict.ProcessingTimeMs,
		verdict.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert verdict: %w", err)
	}

	return nil
}

func (r *verdictRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*models.SimilarityVerdict, error) {
	query := `
		SELECT id, submission_id, best_match_id, score, compared_count, skipped_count, decision, processing_time_ms, analyzed_at
		FROM verdicts
		WHERE submission_id = $1
		ORDER BY analyzed_at DESC
		LIMIT 1
	`

	verdict, err := r.scanVerdict(r.db.QueryRowContext(ctx, query, submissionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verdict: %w", err)
	}

	return verdict, nil
}

func (r *verdictRepository) Search(ctx context.Context, filters map[string]interface{}, limit, offset int) ([]models.SimilarityVerdict, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	addFilter := func(format string, value interface{}) {
		where += " AND " + fmt.Sprintf(format, argPos)
		args = append(args, value)
		argPos++
	}

	if v, ok := filters["partition_key"]; ok {
		addFilter("s.partition_key = $%d", v)
	}
	if v, ok := filters["submitter_id"]; ok {
		addFilter("s.submitter_id = $%d", v)
	}
	if v, ok := filters["decision"]; ok {
		addFilter("v.decision = $%d", v)
	}
	if v, ok := filters["min_score"]; ok {
		addFilter("v.score >= $%d", v)
	}
	if v, ok := filters["date_from"]; ok {
		addFilter("v.analyzed_at >= $%d", v)
	}
	if v, ok := filters["date_to"]; ok {
		addFilter("v.analyzed_at <= $%d", v)
	}

	countQuery := "SELECT COUNT(*) FROM verdicts v JOIN submissions s ON s.id = v.submission_id " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count verdicts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT v.id, v.submission_id, v.best_match_id, v.score, v.compared_count, v.skipped_count, v.decision, v.processing_time_ms, v.analyzed_at
		FROM verdicts v
		JOIN submissions s ON s.id = v.submission_id
		%s
		ORDER BY v.analyzed_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []models.SimilarityVerdict
	for rows.Next() {
		verdict, err := r.scanVerdict(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan verdict: %w", err)
		}
		verdicts = append(verdicts, *verdict)
	}

	return verdicts, total, rows.Err()
}

func (r *verdictRepository) PartitionStats(ctx context.Context, partitionKey string) (*models.PartitionStatsResponse, error) {
	query := `
		SELECT
			COUNT(s.id),
			COUNT(v.id),
			COUNT(v.id) FILTER (WHERE v.decision = 'flagged'),
			COALESCE(AVG(v.score), 0),
			MAX(v.analyzed_at)
		FROM submissions s
		LEFT JOIN verdicts v ON v.submission_id = s.id
		WHERE s.partition_key = $1
	`

	stats := &models.PartitionStatsResponse{PartitionKey: partitionKey}
	var lastAnalyzed sql.NullTime
	err := r.db.QueryRowContext(ctx, query, partitionKey).Scan(
		&stats.TotalSubmissions,
		&stats.AnalyzedCount,
		&stats.FlaggedCount,
		&stats.AvgScore,
		&lastAnalyzed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get partition stats: %w", err)
	}

	if lastAnalyzed.Valid {
		t := lastAnalyzed.Time
		stats.LastAnalyzedAt = &t
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *verdictRepository) scanVerdict(row rowScanner) (*models.SimilarityVerdict, error) {
	var verdict models.SimilarityVerdict
	var bestMatch sql.NullString
	var decision string
	var analyzedAt time.Time

	err := row.Scan(
		&verdict.ID,
		&verdict.SubmissionID,
		&bestMatch,
		&verdict.Score,
		&verdict.ComparedCount,
		&verdict.SkippedCount,
		&decision,
		&verdict.ProcessingTimeMs,
		&analyzedAt,
	)
	if err != nil {
		return nil, err
	}

	if bestMatch.Valid {
		verdict.BestMatchID = &bestMatch.String
	}
	verdict.Decision = models.PolicyDecision(decision)
	verdict.AnalyzedAt = analyzedAt

	return &verdict, nil
}
