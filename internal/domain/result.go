package domain

import (
	"time"

	"github.com/google/uuid"
)

// HeadingEntry is a heading in the flattened document output.
type HeadingEntry struct {
	PageIndex int    `json:"page_index"`
	Text      string `json:"text"`
	Level     int    `json:"level"`
}

// ParagraphEntry is a paragraph in the flattened document output.
type ParagraphEntry struct {
	PageIndex int    `json:"page_index"`
	Text      string `json:"text"`
}

// KeyValueEntry is a key-value pair in the flattened document output.
type KeyValueEntry struct {
	PageIndex int    `json:"page_index"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// PageError records why a page was excluded from structuring.
type PageError struct {
	PageIndex int    `json:"page_index"`
	Reason    string `json:"reason"`
}

// PageResult is the per-page view of the document.
type PageResult struct {
	PageIndex  int              `json:"page_index"`
	EngineUsed EngineKind       `json:"engine_used"`
	Quality    QualityScore     `json:"quality"`
	Kind       DocumentKind     `json:"document_kind"`
	Headings   []HeadingEntry   `json:"headings"`
	Paragraphs []ParagraphEntry `json:"paragraphs"`
	KeyValues  []KeyValueEntry  `json:"key_values"`
	Contacts   []Contact        `json:"contacts"`
	Columns    []string         `json:"columns"`
	RawText    string           `json:"raw_text"`
}

// Summary is the human-readable rendering of the abstract.
type Summary struct {
	Keywords []string `json:"keywords"`
	Text     string   `json:"text"`
}

// DocumentResult is the terminal aggregate for one input document. It is
// built once by the assembler and not mutated afterwards.
type DocumentResult struct {
	ID         uuid.UUID        `json:"id"`
	SourceName string           `json:"source_name"`
	PageCount  int              `json:"page_count"`
	Status     ProcessingStatus `json:"status"`
	Headings   []HeadingEntry   `json:"headings"`
	Paragraphs []ParagraphEntry `json:"paragraphs"`
	KeyValues  []KeyValueEntry  `json:"key_values"`
	Contacts   []Contact        `json:"contacts"`
	Tables     []Table          `json:"tables"`
	Abstract   []ScoredSentence `json:"abstract"`
	Summary    Summary          `json:"summary"`
	PageErrors []PageError      `json:"page_errors"`
	Warnings   []string         `json:"warnings"`
	Pages      []PageResult     `json:"pages"`
	CreatedAt  time.Time        `json:"created_at"`
}

// ParagraphBlocks rebuilds paragraph blocks from the flattened output so
// the abstract can be recomputed for a new keyword set.
func (r *DocumentResult) ParagraphBlocks() []Block {
	blocks := make([]Block, 0, len(r.Paragraphs))
	for _, p := range r.Paragraphs {
		blocks = append(blocks, NewParagraphBlock(p.PageIndex, []string{p.Text}, p.Text, nil))
	}
	return blocks
}
