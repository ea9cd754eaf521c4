package structure

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"docintel/internal/domain"
)

// Line is a band of fragments that share a vertical span, in left-to-right order.
type Line struct {
	PageIndex int
	Text      string
	Box       domain.BBox
	Fragments []domain.Fragment
}

// ReadingOrder returns a copy of frags sorted by page, then top edge, then left edge.
func ReadingOrder(frags []domain.Fragment) []domain.Fragment {
	out := make([]domain.Fragment, len(frags))
	copy(out, frags)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PageIndex != b.PageIndex {
			return a.PageIndex < b.PageIndex
		}
		if a.Box.Y != b.Box.Y {
			return a.Box.Y < b.Box.Y
		}
		return a.Box.X < b.Box.X
	})
	return out
}

// verticalOverlap returns the overlap of the vertical spans of a and b as a
// fraction of the shorter span. Zero-height spans count as fully overlapping
// when they fall inside the other span.
func verticalOverlap(a, b domain.BBox) float64 {
	top := math.Max(a.Y, b.Y)
	bottom := math.Min(a.Bottom(), b.Bottom())
	minH := math.Min(a.Height, b.Height)
	if minH <= 0 {
		if bottom >= top {
			return 1
		}
		return 0
	}
	if bottom <= top {
		return 0
	}
	return (bottom - top) / minH
}

// BuildLines groups frags into line bands. A fragment joins the current band
// when its vertical span overlaps every fragment already in the band by more
// than minOverlap, so skewed text cannot chain into one line.
func BuildLines(frags []domain.Fragment, minOverlap float64) []Line {
	ordered := ReadingOrder(frags)
	var lines []Line
	var band []domain.Fragment

	flush := func() {
		if len(band) > 0 {
			lines = append(lines, newLine(band))
			band = nil
		}
	}

	for _, f := range ordered {
		if len(band) > 0 && f.PageIndex == band[0].PageIndex && fitsBand(band, f.Box, minOverlap) {
			band = append(band, f)
			continue
		}
		flush()
		band = []domain.Fragment{f}
	}
	flush()
	return lines
}

func fitsBand(band []domain.Fragment, box domain.BBox, minOverlap float64) bool {
	for _, m := range band {
		if verticalOverlap(m.Box, box) <= minOverlap {
			return false
		}
	}
	return true
}

func newLine(band []domain.Fragment) Line {
	frags := make([]domain.Fragment, len(band))
	copy(frags, band)
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].Box.X < frags[j].Box.X })

	box := frags[0].Box
	var width float64
	var runes int
	for _, f := range frags {
		box = box.Union(f.Box)
		width += f.Box.Width
		runes += utf8.RuneCountInString(f.Text)
	}
	charWidth := 0.0
	if runes > 0 {
		charWidth = width / float64(runes)
	}

	var sb strings.Builder
	for i, f := range frags {
		if i > 0 {
			sb.WriteString(strings.Repeat(" ", gapSpaces(f.Box.X-frags[i-1].Box.Right(), charWidth)))
		}
		sb.WriteString(f.Text)
	}
	return Line{
		PageIndex: frags[0].PageIndex,
		Text:      strings.TrimSpace(sb.String()),
		Box:       box,
		Fragments: frags,
	}
}

// gapSpaces converts a horizontal gap to a space count, at least one.
func gapSpaces(gap, charWidth float64) int {
	if charWidth <= 0 || gap <= 0 {
		return 1
	}
	n := int(math.Round(gap / charWidth))
	if n < 1 {
		return 1
	}
	return n
}

// medianHeight returns the median line height of lines.
func medianHeight(lines []Line) float64 {
	if len(lines) == 0 {
		return 0
	}
	hs := make([]float64, len(lines))
	for i, l := range lines {
		hs[i] = l.Box.Height
	}
	sort.Float64s(hs)
	mid := len(hs) / 2
	if len(hs)%2 == 1 {
		return hs[mid]
	}
	return (hs[mid-1] + hs[mid]) / 2
}
