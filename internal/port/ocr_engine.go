package port

import (
	"context"
	"image"

	"docintel/internal/domain"
)

// OCREngine abstracts a text recognizer that returns positioned fragments.
// Implementations normalize bounding boxes to the page and report
// confidence in [0,1]. An engine that cannot run returns an error; it is
// never expected to be interrupted mid-call.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) ([]domain.Fragment, error)
}
