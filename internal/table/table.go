// Package table provides table extraction collaborators. Tables are detected
// by an external service; this package only transports and reshapes grids.
package table

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docintel/internal/config"
	"docintel/internal/domain"
	"docintel/internal/port"
)

// New creates the table extractor selected by cfg.Provider.
func New(cfg config.TableConfig) (port.TableExtractor, error) {
	switch cfg.Provider {
	case "", "none":
		return Noop{}, nil
	case "http":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("table provider http: endpoint is required")
		}
		return NewHTTPExtractor(cfg), nil
	default:
		return nil, fmt.Errorf("unknown table provider: %s", cfg.Provider)
	}
}

// Noop never finds tables.
type Noop struct{}

func (Noop) ExtractTables(_ context.Context, _ []byte) ([]domain.Table, error) {
	return nil, nil
}

// HTTPExtractor posts the source PDF to a table detection service (for
// example a camelot wrapper) and reads back row-major grids.
type HTTPExtractor struct {
	endpoint string
	client   *http.Client
}

// NewHTTPExtractor creates an HTTPExtractor.
func NewHTTPExtractor(cfg config.TableConfig) *HTTPExtractor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &HTTPExtractor{endpoint: cfg.Endpoint, client: &http.Client{Timeout: timeout}}
}

type apiTable struct {
	PageIndex int        `json:"page_index"`
	Rows      [][]string `json:"rows"`
}

type apiResponse struct {
	Tables []apiTable `json:"tables"`
}

func (h *HTTPExtractor) ExtractTables(ctx context.Context, source []byte) ([]domain.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling table service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("table service error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	tables := make([]domain.Table, 0, len(parsed.Tables))
	for _, t := range parsed.Tables {
		tables = append(tables, FromRows(t.PageIndex, t.Rows))
	}
	return tables, nil
}

// FromRows builds a Table from a row-major grid. Ragged rows are padded to
// the widest row.
func FromRows(pageIndex int, rows [][]string) domain.Table {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	t := domain.Table{PageIndex: pageIndex, Rows: len(rows), Cols: cols, Cells: []domain.TableCell{}}
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			text := ""
			if j < len(r) {
				text = r[j]
			}
			t.Cells = append(t.Cells, domain.TableCell{Row: i, Col: j, Text: text})
		}
	}
	return t
}
