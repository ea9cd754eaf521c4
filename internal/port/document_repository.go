package port

import (
	"context"

	"github.com/google/uuid"

	"docintel/internal/domain"
)

// DocumentRepository persists processed documents and their results.
type DocumentRepository interface {
	Create(ctx context.Context, rec *domain.DocumentRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error)
	UpdateResult(ctx context.Context, rec *domain.DocumentRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}
