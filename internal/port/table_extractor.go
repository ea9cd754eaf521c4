package port

import (
	"context"

	"docintel/internal/domain"
)

// TableExtractor detects tables in a source PDF. The grids it returns are
// passed through to the output untouched.
type TableExtractor interface {
	ExtractTables(ctx context.Context, source []byte) ([]domain.Table, error)
}
