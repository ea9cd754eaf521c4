package port

import (
	"context"
	"image"

	"docintel/internal/domain"
)

// Page is one raster page of an input document. Err is set instead of Image
// when the page could not be rasterized.
type Page struct {
	Index int
	Image image.Image
	Err   error
}

// PageLoader turns a source document into page images.
type PageLoader interface {
	Load(ctx context.Context, data []byte, fileType domain.FileType) ([]Page, error)
}
