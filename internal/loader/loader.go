// Package loader rasterizes input documents. Scanned PDFs yield the largest
// embedded image of each page; image files yield a single page.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/tiff"

	"docintel/internal/domain"
	"docintel/internal/port"
)

// DetectFileType identifies a supported document from its leading bytes.
func DetectFileType(data []byte) (domain.FileType, error) {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return domain.FileTypePDF, nil
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return domain.FileTypePNG, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return domain.FileTypeJPG, nil
	default:
		return "", domain.ErrUnsupportedFileType
	}
}

// Loader implements port.PageLoader.
type Loader struct{}

// New creates a Loader.
func New() *Loader {
	return &Loader{}
}

// Load returns the pages of data. Pages that cannot be rasterized carry a
// domain.ErrInvalidImage error instead of an image. A document with no pages
// fails with domain.ErrEmptyDocument.
func (l *Loader) Load(ctx context.Context, data []byte, fileType domain.FileType) ([]port.Page, error) {
	switch fileType {
	case domain.FileTypePDF:
		return l.loadPDF(ctx, data)
	case domain.FileTypePNG, domain.FileTypeJPG:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %v", domain.ErrInvalidImage, fileType, err)
		}
		return []port.Page{{Index: 0, Image: img}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, fileType)
	}
}

func (l *Loader) loadPDF(ctx context.Context, data []byte) ([]port.Page, error) {
	pdf, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: reading pdf: %v", domain.ErrInvalidImage, err)
	}
	if pdf.PageCount == 0 {
		return nil, domain.ErrEmptyDocument
	}

	pages := make([]port.Page, 0, pdf.PageCount)
	for pageNr := 1; pageNr <= pdf.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := port.Page{Index: pageNr - 1}
		img, err := largestPageImage(pdf, pageNr)
		if err != nil {
			log.Printf("loader.Loader.loadPDF: page %d: %v", pageNr, err)
			page.Err = err
		} else {
			page.Image = img
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// largestPageImage decodes the embedded images of a page and keeps the one
// covering the most pixels, which for scanned documents is the page scan.
func largestPageImage(pdf *model.Context, pageNr int) (image.Image, error) {
	imgs, err := pdfcpu.ExtractPageImages(pdf, pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting images: %v", domain.ErrInvalidImage, err)
	}

	objNrs := make([]int, 0, len(imgs))
	for nr := range imgs {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	var best image.Image
	bestArea := 0
	for _, nr := range objNrs {
		decoded, _, err := image.Decode(imgs[nr])
		if err != nil {
			log.Printf("loader.largestPageImage: page %d object %d (%s) not decodable: %v", pageNr, nr, imgs[nr].FileType, err)
			continue
		}
		if area := decoded.Bounds().Dx() * decoded.Bounds().Dy(); area > bestArea {
			best, bestArea = decoded, area
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: page %d has no raster image", domain.ErrInvalidImage, pageNr)
	}
	return best, nil
}
