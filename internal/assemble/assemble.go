// Package assemble joins per-page outcomes, tables and the abstract into the
// final DocumentResult.
package assemble

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"docintel/internal/domain"
	"docintel/internal/summary"
)

// PageOutcome is the result of processing one page. Err is set when the page
// failed; the other fields are then ignored.
type PageOutcome struct {
	PageIndex  int
	EngineUsed domain.EngineKind
	Quality    domain.QualityScore
	Blocks     []domain.Block
	Contacts   []domain.Contact
	Columns    []string
	RawText    string
	Kind       domain.DocumentKind
	Err        error
}

// Input gathers everything the assembler consumes.
type Input struct {
	ID         uuid.UUID
	SourceName string
	Pages      []PageOutcome
	Tables     []domain.Table
	Abstract   domain.Abstract
	Warnings   []string
	CreatedAt  time.Time
}

// Assemble builds the DocumentResult. Failed pages are listed in PageErrors
// and make the status partial. It fails with domain.ErrEmptyDocument when
// there are no pages and domain.ErrNoPagesSucceeded when every page failed.
func Assemble(in Input) (*domain.DocumentResult, error) {
	if len(in.Pages) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	pages := make([]PageOutcome, len(in.Pages))
	copy(pages, in.Pages)
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].PageIndex < pages[j].PageIndex })

	res := &domain.DocumentResult{
		ID:         in.ID,
		SourceName: in.SourceName,
		PageCount:  len(pages),
		Status:     domain.StatusCompleted,
		Headings:   []domain.HeadingEntry{},
		Paragraphs: []domain.ParagraphEntry{},
		KeyValues:  []domain.KeyValueEntry{},
		Contacts:   []domain.Contact{},
		Tables:     []domain.Table{},
		Abstract:   []domain.ScoredSentence{},
		PageErrors: []domain.PageError{},
		Warnings:   []string{},
		Pages:      []domain.PageResult{},
		CreatedAt:  in.CreatedAt,
	}

	for _, p := range pages {
		if p.Err != nil {
			res.PageErrors = append(res.PageErrors, domain.PageError{PageIndex: p.PageIndex, Reason: p.Err.Error()})
			continue
		}
		pr := pageResult(p)
		res.Headings = append(res.Headings, pr.Headings...)
		res.Paragraphs = append(res.Paragraphs, pr.Paragraphs...)
		res.KeyValues = append(res.KeyValues, pr.KeyValues...)
		res.Contacts = append(res.Contacts, pr.Contacts...)
		res.Pages = append(res.Pages, pr)
	}

	if len(res.Pages) == 0 {
		return nil, fmt.Errorf("%w: all %d page(s) failed", domain.ErrNoPagesSucceeded, len(pages))
	}
	if len(res.PageErrors) > 0 {
		res.Status = domain.StatusPartial
	}

	res.Tables = append(res.Tables, in.Tables...)
	res.Abstract = append(res.Abstract, in.Abstract.Sentences...)
	res.Summary = domain.Summary{Keywords: nonNil(in.Abstract.Keywords), Text: summary.Text(in.Abstract)}
	res.Warnings = append(res.Warnings, in.Warnings...)
	return res, nil
}

func pageResult(p PageOutcome) domain.PageResult {
	pr := domain.PageResult{
		PageIndex:  p.PageIndex,
		EngineUsed: p.EngineUsed,
		Quality:    p.Quality,
		Kind:       p.Kind,
		Headings:   []domain.HeadingEntry{},
		Paragraphs: []domain.ParagraphEntry{},
		KeyValues:  []domain.KeyValueEntry{},
		Contacts:   nonNilContacts(p.Contacts),
		Columns:    nonNil(p.Columns),
		RawText:    p.RawText,
	}
	for _, b := range p.Blocks {
		switch b.Kind {
		case domain.BlockHeading:
			pr.Headings = append(pr.Headings, domain.HeadingEntry{PageIndex: b.PageIndex, Text: b.Heading.Text, Level: b.Heading.Level})
		case domain.BlockParagraph:
			pr.Paragraphs = append(pr.Paragraphs, domain.ParagraphEntry{PageIndex: b.PageIndex, Text: b.Paragraph.Text})
		case domain.BlockKeyValue:
			pr.KeyValues = append(pr.KeyValues, domain.KeyValueEntry{PageIndex: b.PageIndex, Key: b.KeyValue.Key, Value: b.KeyValue.Value})
		default:
			panic("assemble: unknown block kind " + string(b.Kind))
		}
	}
	return pr
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilContacts(c []domain.Contact) []domain.Contact {
	if c == nil {
		return []domain.Contact{}
	}
	return c
}
