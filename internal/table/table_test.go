package table_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docintel/internal/config"
	"docintel/internal/domain"
	"docintel/internal/table"
)

func TestNew_SelectsProvider(t *testing.T) {
	ex, err := table.New(config.TableConfig{Provider: "none"})
	require.NoError(t, err)
	assert.IsType(t, table.Noop{}, ex)

	ex, err = table.New(config.TableConfig{Provider: "http", Endpoint: "http://tables"})
	require.NoError(t, err)
	assert.IsType(t, &table.HTTPExtractor{}, ex)

	_, err = table.New(config.TableConfig{Provider: "http"})
	assert.Error(t, err)

	_, err = table.New(config.TableConfig{Provider: "camelot"})
	assert.ErrorContains(t, err, "unknown table provider")
}

func TestNoop_ReturnsNothing(t *testing.T) {
	tables, err := table.Noop{}.ExtractTables(context.Background(), []byte("%PDF"))
	assert.NoError(t, err)
	assert.Empty(t, tables)
}

func TestHTTPExtractor_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "%PDF-1.4", string(body))
		_, _ = w.Write([]byte(`{"tables":[{"page_index":1,"rows":[["Item","Qty"],["Pen"]]}]}`))
	}))
	defer server.Close()

	tables, err := table.NewHTTPExtractor(config.TableConfig{Provider: "http", Endpoint: server.URL}).
		ExtractTables(context.Background(), []byte("%PDF-1.4"))

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 1, tables[0].PageIndex)
	assert.Equal(t, [][]string{{"Item", "Qty"}, {"Pen", ""}}, tables[0].Grid())
}

func TestHTTPExtractor_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := table.NewHTTPExtractor(config.TableConfig{Endpoint: server.URL}).ExtractTables(context.Background(), nil)

	assert.ErrorContains(t, err, "status 502")
}

func TestFromRows_Empty(t *testing.T) {
	tbl := table.FromRows(0, nil)
	assert.Equal(t, domain.Table{PageIndex: 0, Cells: []domain.TableCell{}}, tbl)
	assert.Empty(t, tbl.Grid())
}
