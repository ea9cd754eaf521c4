package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"docintel/internal/domain"
)

const summarySheet = "Summary"

// WriteTablesXLSX writes a workbook with a summary sheet and one sheet per
// extracted table.
func WriteTablesXLSX(w io.Writer, res *domain.DocumentResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Document", res.SourceName},
		{"Status", string(res.Status)},
		{"Pages", res.PageCount},
		{"Tables", len(res.Tables)},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	for i, t := range res.Tables {
		name := fmt.Sprintf("Table %d - Page %d", i+1, t.PageIndex+1)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		for r, cells := range t.Grid() {
			row := make([]interface{}, len(cells))
			for c, v := range cells {
				row[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("write table %d row %d: %w", i+1, r+1, err)
			}
		}
	}

	return f.Write(w)
}
