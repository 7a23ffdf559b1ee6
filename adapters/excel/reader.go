package excel

import (
	"bytes"
	"fmt"
	"strings"

	"pricelist/domain/catalog"
	"pricelist/ports"

	"github.com/xuri/excelize/v2"
)

// WorkbookReader reads uploaded xlsx bytes into one raw grid per sheet.
type WorkbookReader struct{}

var _ ports.GridReader = (*WorkbookReader)(nil)

// NewWorkbookReader creates a new workbook reader.
func NewWorkbookReader() *WorkbookReader {
	return &WorkbookReader{}
}

// Read opens the workbook and returns a rectangular grid for every sheet.
// A sheet that fails to read becomes an alert; only a workbook that cannot
// be opened at all is an error.
func (r *WorkbookReader) Read(data []byte) ([]catalog.NamedGrid, []string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var grids []catalog.NamedGrid
	var alerts []string
	for _, sheet := range f.GetSheetList() {
		grid, err := readSheetGrid(f, sheet)
		if err != nil {
			alerts = append(alerts, fmt.Sprintf("sheet %q: %v", sheet, err))
			continue
		}
		if len(grid) == 0 {
			continue
		}
		grids = append(grids, catalog.NamedGrid{Name: sheet, Grid: grid})
	}
	return grids, alerts, nil
}

// readSheetGrid reads one sheet as a rectangle padded to its widest row and
// fills merged regions with the anchor value, so carry-down and header
// lookups see the value in every covered cell.
func readSheetGrid(f *excelize.File, sheet string) (catalog.RawGrid, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	maxCol := 0
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}

	grid := make(catalog.RawGrid, len(rows))
	for i, row := range rows {
		grid[i] = make([]catalog.Cell, maxCol)
		for j := 0; j < maxCol; j++ {
			if j < len(row) {
				grid[i][j] = row[j]
			} else {
				grid[i][j] = ""
			}
		}
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells: %w", err)
	}
	for _, merge := range merges {
		val := strings.TrimSpace(merge.GetCellValue())
		startCol, startRow, err := excelize.CellNameToCoordinates(merge.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(merge.GetEndAxis())
		if err != nil {
			continue
		}
		for row := startRow - 1; row < endRow && row < len(grid); row++ {
			for col := startCol - 1; col < endCol && col < maxCol; col++ {
				grid[row][col] = val
			}
		}
	}

	return grid, nil
}
