// Package preprocess normalizes page images before OCR. The fast path only
// binarizes; the accurate path denoises, thresholds adaptively and deskews.
package preprocess

import (
	"fmt"
	"image"

	"docintel/internal/domain"
)

// Params holds the numerical parameters of both profiles.
type Params struct {
	FixedThreshold  uint8
	AdaptiveWindow  int
	AdaptiveOffset  int
	MaxSkewDegrees  float64
	SkewStepDegrees float64
	SkewSampleWidth int
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		FixedThreshold:  128,
		AdaptiveWindow:  15,
		AdaptiveOffset:  10,
		MaxSkewDegrees:  10,
		SkewStepDegrees: 0.5,
		SkewSampleWidth: 800,
	}
}

// Selector picks the normalization profile for an OCR path.
type Selector struct {
	params Params
}

// NewSelector creates a Selector with the given parameters.
func NewSelector(params Params) *Selector {
	return &Selector{params: params}
}

// Prepare returns img normalized for the given OCR path. It fails only with
// domain.ErrInvalidImage when img is nil or has no pixels.
func (s *Selector) Prepare(path domain.EngineKind, img image.Image) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidImage)
	}
	p := s.params
	switch path {
	case domain.EngineFast:
		return Threshold(Grayscale(img), p.FixedThreshold), nil
	case domain.EngineAccurate:
		g := MedianDenoise(Grayscale(img))
		g = AdaptiveThreshold(g, p.AdaptiveWindow, p.AdaptiveOffset)
		return Deskew(g, p.MaxSkewDegrees, p.SkewStepDegrees, p.SkewSampleWidth), nil
	default:
		return nil, fmt.Errorf("preprocess: unknown engine path %q", path)
	}
}
