// Package structure turns OCR fragments into headings, paragraphs and
// key-value blocks in reading order. Output depends only on the input
// fragments and the configuration.
package structure

import (
	"math"
	"sort"
	"strings"

	"docintel/internal/config"
	"docintel/internal/domain"
)

// Config holds the structuring heuristics.
type Config struct {
	KeyValueWordCap     int
	Separators          string
	HeadingHeightFactor float64
	HeadingWordCap      int
	MaxHeadingLevels    int
	ParagraphGapFactor  float64
	LineOverlap         float64
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		KeyValueWordCap:     5,
		Separators:          ":-=",
		HeadingHeightFactor: 1.3,
		HeadingWordCap:      8,
		MaxHeadingLevels:    3,
		ParagraphGapFactor:  1.5,
		LineOverlap:         0.5,
	}
}

// ConfigFrom maps application configuration onto the engine's.
func ConfigFrom(c config.StructureConfig) Config {
	return Config{
		KeyValueWordCap:     c.KeyValueWordCap,
		Separators:          c.Separators,
		HeadingHeightFactor: c.HeadingHeightFactor,
		HeadingWordCap:      c.HeadingWordCap,
		MaxHeadingLevels:    c.MaxHeadingLevels,
		ParagraphGapFactor:  c.ParagraphGapFactor,
		LineOverlap:         c.LineOverlap,
	}
}

// Engine classifies fragments into blocks.
type Engine struct {
	cfg Config
}

// New creates an Engine.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

type classifiedLine struct {
	Line
	kind lineKind
	kv   keyValue
}

// Structure returns the blocks for frags in reading order. Every fragment
// ends up in exactly one block; a line that is neither a heading nor a
// key-value pair becomes part of a paragraph.
func (e *Engine) Structure(frags []domain.Fragment) []domain.Block {
	lines := BuildLines(frags, e.cfg.LineOverlap)
	var blocks []domain.Block
	for start := 0; start < len(lines); {
		end := start
		for end < len(lines) && lines[end].PageIndex == lines[start].PageIndex {
			end++
		}
		blocks = append(blocks, e.structurePage(lines[start:end])...)
		start = end
	}
	return blocks
}

func (e *Engine) structurePage(lines []Line) []domain.Block {
	median := medianHeight(lines)
	classified := make([]classifiedLine, len(lines))
	for i, l := range lines {
		classified[i] = e.classify(l, median)
	}
	levels := e.headingLevels(classified)

	var blocks []domain.Block
	var para []classifiedLine
	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, paragraphBlock(para))
			para = nil
		}
	}

	for _, cl := range classified {
		switch cl.kind {
		case lineKeyValue:
			flush()
			blocks = append(blocks, domain.NewKeyValueBlock(cl.PageIndex, cl.kv.key, cl.kv.sep, cl.kv.value, cl.Fragments))
		case lineHeading:
			flush()
			blocks = append(blocks, domain.NewHeadingBlock(cl.PageIndex, cl.Text, levels[heightKey(cl.Box.Height)], cl.Fragments))
		case lineParagraph:
			if len(para) > 0 {
				prev := para[len(para)-1]
				if cl.Box.Y-prev.Box.Bottom() >= e.cfg.ParagraphGapFactor*median {
					flush()
				}
			}
			para = append(para, cl)
		}
	}
	flush()
	return blocks
}

func (e *Engine) classify(l Line, median float64) classifiedLine {
	if kv, ok := splitKeyValue(l.Text, e.cfg.Separators, e.cfg.KeyValueWordCap); ok {
		return classifiedLine{Line: l, kind: lineKeyValue, kv: kv}
	}
	tall := median > 0 && l.Box.Height > median*e.cfg.HeadingHeightFactor
	if tall || isShoutedHeading(l.Text, e.cfg.HeadingWordCap) {
		return classifiedLine{Line: l, kind: lineHeading}
	}
	return classifiedLine{Line: l, kind: lineParagraph}
}

// heightKey rounds a normalized height so near-identical headings share a level.
func heightKey(h float64) int64 {
	return int64(math.Round(h * 1000))
}

// headingLevels buckets the distinct heading heights of a page into at most
// MaxHeadingLevels levels, the tallest being level 1.
func (e *Engine) headingLevels(lines []classifiedLine) map[int64]int {
	seen := make(map[int64]bool)
	var heights []int64
	for _, l := range lines {
		if l.kind != lineHeading {
			continue
		}
		k := heightKey(l.Box.Height)
		if !seen[k] {
			seen[k] = true
			heights = append(heights, k)
		}
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] > heights[j] })

	maxLevels := e.cfg.MaxHeadingLevels
	if maxLevels < 1 {
		maxLevels = 1
	}
	levels := make(map[int64]int, len(heights))
	for rank, h := range heights {
		if len(heights) <= maxLevels {
			levels[h] = rank + 1
		} else {
			levels[h] = 1 + rank*maxLevels/len(heights)
		}
	}
	return levels
}

func paragraphBlock(lines []classifiedLine) domain.Block {
	texts := make([]string, 0, len(lines))
	var frags []domain.Fragment
	for _, l := range lines {
		if l.Text != "" {
			texts = append(texts, l.Text)
		}
		frags = append(frags, l.Fragments...)
	}
	return domain.NewParagraphBlock(lines[0].PageIndex, texts, strings.Join(texts, " "), frags)
}

// DetectKind gives a coarse hint of what a page is from its text.
func DetectKind(text string) domain.DocumentKind {
	t := strings.ToLower(text)
	if strings.Contains(t, "certificate") || strings.Contains(t, "has successfully completed") {
		return domain.DocumentKindCertificate
	}
	if strings.Contains(t, ":") && strings.Contains(t, "date") {
		return domain.DocumentKindForm
	}
	return domain.DocumentKindGeneric
}

// RawText joins the text of each line of frags, one line per row.
func RawText(frags []domain.Fragment, minOverlap float64) string {
	lines := BuildLines(frags, minOverlap)
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}
