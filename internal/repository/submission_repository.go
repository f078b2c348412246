package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campusworks/integrity-service/internal/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	ListPartition(ctx context.Context, partitionKey, excludeID string) ([]models.CorpusRef, error)
	CountByPartition(ctx context.Context, partitionKey string) (int, error)
	Ping(ctx context.Context) error
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO submissions (id, partition_key, submitter_id, filename, format, digest, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		submission.ID,
		submission.PartitionKey,
		submission.SubmitterID,
		submission.Filename,
		submission.Format,
		submission.Digest,
		submission.SizeBytes,
		submission.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `
		SELECT id, partition_key, submitter_id, filename, format, digest, size_bytes, created_at
		FROM submissions
		WHERE id = $1
	`

	var submission models.Submission
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&submission.ID,
		&submission.PartitionKey,
		&submission.SubmitterID,
		&submission.Filename,
		&submission.Format,
		&submission.Digest,
		&submission.SizeBytes,
		&submission.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &submission, nil
}

// ListPartition returns comparison metadata for every stored submission in
// the partition except the excluded one. The corpus is append-only, so the
// created_at ordering is stable across scans.
func (r *submissionRepository) ListPartition(ctx context.Context, partitionKey, excludeID string) ([]models.CorpusRef, error) {
	query := `
		SELECT id, digest, format, created_at
		FROM submissions
		WHERE partition_key = $1
			AND id != $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, partitionKey, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partition: %w", err)
	}
	defer rows.Close()

	var refs []models.CorpusRef
	for rows.Next() {
		var ref models.CorpusRef
		if err := rows.Scan(&ref.ID, &ref.Digest, &ref.Format, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan corpus ref: %w", err)
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

func (r *submissionRepository) CountByPartition(ctx context.Context, partitionKey string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE partition_key = $1`,
		partitionKey,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count partition: %w", err)
	}

	return count, nil
}
