package structure

import (
	"strings"

	"docintel/internal/domain"
)

const columnSplit = 0.5

// Columns splits a page at its vertical midline and returns the text of the
// left and right halves, one line per row. Fragments that cross the midline
// belong to neither half. It returns nil unless both halves carry text.
// Column lines that repeat a line of a paragraph block are dropped.
func Columns(frags []domain.Fragment, minOverlap float64, blocks []domain.Block) []string {
	var left, right []domain.Fragment
	for _, f := range frags {
		switch {
		case f.Box.Right() <= columnSplit:
			left = append(left, f)
		case f.Box.X >= columnSplit:
			right = append(right, f)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for _, b := range blocks {
		if b.Kind != domain.BlockParagraph {
			continue
		}
		for _, l := range b.Paragraph.Lines {
			seen[strings.TrimSpace(l)] = struct{}{}
		}
	}

	return []string{columnText(left, minOverlap, seen), columnText(right, minOverlap, seen)}
}

func columnText(frags []domain.Fragment, minOverlap float64, seen map[string]struct{}) string {
	var texts []string
	for _, l := range BuildLines(frags, minOverlap) {
		if _, dup := seen[l.Text]; dup {
			continue
		}
		texts = append(texts, l.Text)
	}
	return strings.Join(texts, "\n")
}
