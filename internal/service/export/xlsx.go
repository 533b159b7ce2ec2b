package export

import (
	"errors"
	"fmt"

	"TechScreener/internal/domain/models"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ErrNoColumns is returned when there is nothing to put in the header row.
var ErrNoColumns = errors.New("export: no columns")

// Workbook renders p into a single-sheet xlsx document: one header row, then
// one row per result in p.Columns order. Zero rows produce a header-only sheet.
func Workbook(sheet string, p models.Presentation) ([]byte, error) {
	if len(p.Columns) == 0 {
		return nil, ErrNoColumns
	}
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]any, len(p.Columns))
	for i, c := range p.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range p.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		values := p.Values(row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
