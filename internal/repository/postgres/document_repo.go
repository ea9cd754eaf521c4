package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docintel/internal/domain"
	"docintel/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, rec *domain.DocumentRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `INSERT INTO documents (
		id, source_name, file_type, s3_bucket, s3_key,
		status, page_count, keywords, result,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11
	)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.SourceName, rec.FileType, rec.S3Bucket, rec.S3Key,
		rec.Status, rec.PageCount, rec.Keywords, rec.Result,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &rec, nil
}

// List returns records newest first. The stored result payload is omitted.
func (r *documentRepo) List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents"); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	var recs []domain.DocumentRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT id, source_name, file_type, s3_bucket, s3_key, status, page_count, keywords,
			'null'::jsonb AS result, created_at, updated_at
		FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	if recs == nil {
		recs = []domain.DocumentRecord{}
	}
	return recs, total, nil
}

func (r *documentRepo) UpdateResult(ctx context.Context, rec *domain.DocumentRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET keywords = $1, result = $2, updated_at = $3 WHERE id = $4`,
		rec.Keywords, rec.Result, rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
