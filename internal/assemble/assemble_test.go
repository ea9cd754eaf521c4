package assemble_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docintel/internal/assemble"
	"docintel/internal/domain"
	"docintel/internal/summary"
)

func okPage(idx int) assemble.PageOutcome {
	return assemble.PageOutcome{
		PageIndex:  idx,
		EngineUsed: domain.EngineFast,
		Blocks: []domain.Block{
			domain.NewHeadingBlock(idx, "INVOICE", 1, nil),
			domain.NewKeyValueBlock(idx, "Date", ":", "2024-01-01", nil),
			domain.NewParagraphBlock(idx, []string{"Thank you."}, "Thank you.", nil),
		},
		Contacts: []domain.Contact{{Kind: domain.ContactEmail, Value: "a@b.co", PageIndex: idx, BlockIndex: 2}},
		Kind:     domain.DocumentKindForm,
		RawText:  "INVOICE\nDate: 2024-01-01\nThank you.",
	}
}

func TestAssemble_AllPagesSucceed(t *testing.T) {
	id := uuid.New()
	abstract := domain.Abstract{Keywords: []string{"thank"}, Sentences: []domain.ScoredSentence{{Text: "Thank you.", Score: 1}}}

	res, err := assemble.Assemble(assemble.Input{
		ID:         id,
		SourceName: "scan.pdf",
		Pages:      []assemble.PageOutcome{okPage(1), okPage(0)},
		Tables:     []domain.Table{{PageIndex: 0, Rows: 1, Cols: 1, Cells: []domain.TableCell{{Text: "x"}}}},
		Abstract:   abstract,
		CreatedAt:  time.Unix(0, 0).UTC(),
	})

	require.NoError(t, err)
	assert.Equal(t, id, res.ID)
	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, 2, res.PageCount)
	require.Len(t, res.Headings, 2)
	assert.Equal(t, 0, res.Headings[0].PageIndex)
	assert.Equal(t, 1, res.Headings[1].PageIndex)
	assert.Equal(t, []domain.KeyValueEntry{
		{PageIndex: 0, Key: "Date", Value: "2024-01-01"},
		{PageIndex: 1, Key: "Date", Value: "2024-01-01"},
	}, res.KeyValues)
	assert.Len(t, res.Contacts, 2)
	assert.Len(t, res.Tables, 1)
	assert.Equal(t, abstract.Sentences, res.Abstract)
	assert.Equal(t, "Thank you.", res.Summary.Text)
	assert.Empty(t, res.PageErrors)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, []string{}, res.Pages[0].Columns)
}

func TestAssemble_ColumnsCarriedOnPage(t *testing.T) {
	page := okPage(0)
	page.Columns = []string{"left side", "right side"}

	res, err := assemble.Assemble(assemble.Input{Pages: []assemble.PageOutcome{page}})

	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	assert.Equal(t, []string{"left side", "right side"}, res.Pages[0].Columns)
}

func TestAssemble_PartialFailure(t *testing.T) {
	failed := assemble.PageOutcome{PageIndex: 1, Err: fmt.Errorf("%w: page 1: engine down", domain.ErrOCRUnavailable)}

	res, err := assemble.Assemble(assemble.Input{
		Pages:    []assemble.PageOutcome{okPage(0), failed},
		Warnings: []string{"table extraction failed: timeout"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartial, res.Status)
	require.Len(t, res.PageErrors, 1)
	assert.Equal(t, 1, res.PageErrors[0].PageIndex)
	assert.Contains(t, res.PageErrors[0].Reason, "ocr unavailable")
	assert.Equal(t, []string{"table extraction failed: timeout"}, res.Warnings)
	assert.Len(t, res.Pages, 1)
	assert.Equal(t, summary.FallbackText, res.Summary.Text)
}

func TestAssemble_NoPagesSucceeded(t *testing.T) {
	_, err := assemble.Assemble(assemble.Input{Pages: []assemble.PageOutcome{
		{PageIndex: 0, Err: domain.ErrInvalidImage},
		{PageIndex: 1, Err: domain.ErrOCRUnavailable},
	}})

	assert.True(t, errors.Is(err, domain.ErrNoPagesSucceeded))
}

func TestAssemble_NoPages(t *testing.T) {
	_, err := assemble.Assemble(assemble.Input{})
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestAssemble_JSONShape(t *testing.T) {
	res, err := assemble.Assemble(assemble.Input{Pages: []assemble.PageOutcome{{PageIndex: 0, EngineUsed: domain.EngineAccurate}}})
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &obj))

	for _, key := range []string{"headings", "paragraphs", "key_values", "contacts", "tables", "abstract", "page_errors"} {
		v, ok := obj[key]
		require.True(t, ok, key)
		assert.IsType(t, []interface{}{}, v, key)
	}
}
