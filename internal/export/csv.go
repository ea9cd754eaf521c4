// Package export renders a DocumentResult as CSV (key-value pairs) and XLSX
// (extracted tables) for spreadsheet users.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"docintel/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// keyValueColumns defines the key-value CSV header row.
var keyValueColumns = []string{"Page", "Key", "Value"}

// KeyValueWriter wraps csv.Writer for exporting key-value pairs.
type KeyValueWriter struct {
	csv *csv.Writer
}

// NewKeyValueWriter creates a KeyValueWriter that writes CSV to w.
func NewKeyValueWriter(w io.Writer) *KeyValueWriter {
	return &KeyValueWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *KeyValueWriter) WriteHeader() error {
	return w.csv.Write(keyValueColumns)
}

// WriteResult writes one row per key-value pair. Pages are numbered from 1.
func (w *KeyValueWriter) WriteResult(res *domain.DocumentResult) error {
	for _, kv := range res.KeyValues {
		if err := w.csv.Write([]string{strconv.Itoa(kv.PageIndex + 1), kv.Key, kv.Value}); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *KeyValueWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *KeyValueWriter) Error() error {
	return w.csv.Error()
}

// WriteKeyValuesCSV writes the BOM, header and rows for res to w.
func WriteKeyValuesCSV(w io.Writer, res *domain.DocumentResult) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	kw := NewKeyValueWriter(w)
	if err := kw.WriteHeader(); err != nil {
		return err
	}
	if err := kw.WriteResult(res); err != nil {
		return err
	}
	kw.Flush()
	return kw.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "document"
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_source_name}_{suffix}_{YYYY-MM-DD}.{ext}
func BuildFilename(sourceName, suffix, ext string, now time.Time) string {
	base := strings.TrimSuffix(sourceName, extOf(sourceName))
	return fmt.Sprintf("%s_%s_%s.%s", SanitizeFilename(base), suffix, now.Format("2006-01-02"), ext)
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[i:]
	}
	return ""
}
