package ocr

import (
	"unicode"

	"docintel/internal/domain"
)

// Score computes the quality of one page's fragments. Density is the number
// of non-space characters per unit of normalized page area, and the page is
// the unit area. An empty set scores zero confidence, zero density and a low
// confidence fraction of one.
func Score(frags []domain.Fragment, floor float64) domain.QualityScore {
	if len(frags) == 0 {
		return domain.QualityScore{LowConfidenceFraction: 1}
	}
	var sum float64
	var low, chars int
	for _, f := range frags {
		sum += f.Confidence
		if f.Confidence < floor {
			low++
		}
		for _, r := range f.Text {
			if !unicode.IsSpace(r) {
				chars++
			}
		}
	}
	n := float64(len(frags))
	return domain.QualityScore{
		MeanConfidence:        sum / n,
		LowConfidenceFraction: float64(low) / n,
		Density:               float64(chars),
		FragmentCount:         len(frags),
	}
}

// Policy decides whether fast-path output is good enough to keep.
type Policy struct {
	MinMeanConfidence  float64
	MaxLowConfidence   float64
	MinDensity         float64
	LowConfidenceFloor float64
}

// DefaultPolicy returns the calibrated acceptance thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinMeanConfidence:  0.80,
		MaxLowConfidence:   0.15,
		MinDensity:         40,
		LowConfidenceFloor: 0.60,
	}
}

// Accept reports whether q meets every threshold.
func (p Policy) Accept(q domain.QualityScore) bool {
	return q.MeanConfidence >= p.MinMeanConfidence &&
		q.LowConfidenceFraction <= p.MaxLowConfidence &&
		q.Density >= p.MinDensity
}
