package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BBox is a bounding box in page-normalized coordinates: the page spans
// [0,1] on both axes with the origin in the upper-left corner.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the lower edge of the box.
func (b BBox) Bottom() float64 { return b.Y + b.Height }

// Right returns the right edge of the box.
func (b BBox) Right() float64 { return b.X + b.Width }

// Area returns the box area in normalized units.
func (b BBox) Area() float64 { return b.Width * b.Height }

// Union returns the smallest box covering both b and o.
func (b BBox) Union(o BBox) BBox {
	minX, minY := b.X, b.Y
	if o.X < minX {
		minX = o.X
	}
	if o.Y < minY {
		minY = o.Y
	}
	maxX, maxY := b.Right(), b.Bottom()
	if o.Right() > maxX {
		maxX = o.Right()
	}
	if o.Bottom() > maxY {
		maxY = o.Bottom()
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Fragment is one OCR-recognized text unit. Fragments are treated as
// immutable once an engine has produced them.
type Fragment struct {
	Text       string     `json:"text"`
	Box        BBox       `json:"bbox"`
	Confidence float64    `json:"confidence"`
	Source     EngineKind `json:"source"`
	PageIndex  int        `json:"page_index"`
}

// QualityScore summarizes one page's OCR output for the fallback decision.
type QualityScore struct {
	MeanConfidence        float64 `json:"mean_confidence"`
	LowConfidenceFraction float64 `json:"low_confidence_fraction"`
	Density               float64 `json:"density"`
	FragmentCount         int     `json:"fragment_count"`
}

// Heading is the payload of a heading block.
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Paragraph is the payload of a paragraph block. Lines keeps the merged
// line strings in reading order; Text joins them.
type Paragraph struct {
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

// KeyValue is the payload of a key-value block.
type KeyValue struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Separator string `json:"separator"`
}

// Block is a classified unit of page text. Exactly one of Heading,
// Paragraph or KeyValue is set, matching Kind. Fragments lists the source
// fragments in reading order; blocks produced by structuring always carry at
// least one.
type Block struct {
	Kind      BlockKind  `json:"kind"`
	PageIndex int        `json:"page_index"`
	Heading   *Heading   `json:"heading,omitempty"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	KeyValue  *KeyValue  `json:"key_value,omitempty"`
	Fragments []Fragment `json:"fragments"`
}

// NewHeadingBlock builds a heading block.
func NewHeadingBlock(page int, text string, level int, frags []Fragment) Block {
	return Block{Kind: BlockHeading, PageIndex: page, Heading: &Heading{Text: text, Level: level}, Fragments: frags}
}

// NewParagraphBlock builds a paragraph block from its lines.
func NewParagraphBlock(page int, lines []string, text string, frags []Fragment) Block {
	return Block{Kind: BlockParagraph, PageIndex: page, Paragraph: &Paragraph{Text: text, Lines: lines}, Fragments: frags}
}

// NewKeyValueBlock builds a key-value block.
func NewKeyValueBlock(page int, key, sep, value string, frags []Fragment) Block {
	return Block{Kind: BlockKeyValue, PageIndex: page, KeyValue: &KeyValue{Key: key, Value: value, Separator: sep}, Fragments: frags}
}

// Text returns the searchable text of the block.
func (b Block) Text() string {
	switch b.Kind {
	case BlockHeading:
		return b.Heading.Text
	case BlockParagraph:
		return b.Paragraph.Text
	case BlockKeyValue:
		if b.KeyValue.Key == "" {
			return b.KeyValue.Value
		}
		return b.KeyValue.Key + b.KeyValue.Separator + " " + b.KeyValue.Value
	default:
		panic("domain: unknown block kind " + string(b.Kind))
	}
}

// Contact is an email, phone or URL found in a block's text.
type Contact struct {
	Kind       ContactKind `json:"type"`
	Value      string      `json:"value"`
	PageIndex  int         `json:"page_index"`
	BlockIndex int         `json:"block_index"`
}

// ScoredSentence is one sentence selected for an abstract.
type ScoredSentence struct {
	Text     string `json:"text"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// Abstract is the keyword-driven summary. Sentences are in document order.
type Abstract struct {
	Keywords  []string         `json:"keywords"`
	Sentences []ScoredSentence `json:"sentences"`
}

// IsEmpty reports whether no sentence matched any keyword.
func (a Abstract) IsEmpty() bool { return len(a.Sentences) == 0 }

// TableCell is one cell of an extracted table.
type TableCell struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Text string `json:"text"`
}

// Table is an opaque grid produced by the table extraction collaborator.
type Table struct {
	PageIndex int         `json:"page_index"`
	Rows      int         `json:"rows"`
	Cols      int         `json:"cols"`
	Cells     []TableCell `json:"cells"`
}

// Grid returns the table as a dense row-major matrix.
func (t Table) Grid() [][]string {
	grid := make([][]string, t.Rows)
	for i := range grid {
		grid[i] = make([]string, t.Cols)
	}
	for _, c := range t.Cells {
		if c.Row < 0 || c.Row >= t.Rows || c.Col < 0 || c.Col >= t.Cols {
			continue
		}
		grid[c.Row][c.Col] = c.Text
	}
	return grid
}

// DocumentRecord is the persisted row for a processed document.
type DocumentRecord struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	SourceName string           `db:"source_name" json:"source_name"`
	FileType   FileType         `db:"file_type" json:"file_type"`
	S3Bucket   string           `db:"s3_bucket" json:"s3_bucket"`
	S3Key      string           `db:"s3_key" json:"s3_key"`
	Status     ProcessingStatus `db:"status" json:"status"`
	PageCount  int              `db:"page_count" json:"page_count"`
	Keywords   string           `db:"keywords" json:"keywords"`
	Result     json.RawMessage  `db:"result" json:"result"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}
