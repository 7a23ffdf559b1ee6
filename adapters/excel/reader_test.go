package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricelist/domain/catalog"
)

func buildWorkbook(t *testing.T, fill func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	fill(f)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadSingleSheet(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Model"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "Price"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "CH-100"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", 1250000))
	})

	grids, alerts, err := NewWorkbookReader().Read(data)
	require.NoError(t, err)
	assert.Empty(t, alerts)
	require.Len(t, grids, 1)
	assert.Equal(t, "Sheet1", grids[0].Name)

	grid := grids[0].Grid
	require.Len(t, grid, 2)
	assert.Equal(t, "Model", catalog.NormalizeCell(grid[0][0]))
	assert.Equal(t, "CH-100", catalog.NormalizeCell(grid[1][0]))
	assert.Equal(t, "1250000", catalog.NormalizeCell(grid[1][1]))
}

func TestReadPadsRaggedRows(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Model"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "Price"))
		require.NoError(t, f.SetCellValue("Sheet1", "C1", "Notes"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "CH-100"))
	})

	grids, _, err := NewWorkbookReader().Read(data)
	require.NoError(t, err)
	require.Len(t, grids, 1)

	// Every row is padded to the widest row.
	for _, row := range grids[0].Grid {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, "", catalog.NormalizeCell(grids[0].Grid[1][2]))
}

func TestReadFillsMergedCells(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Model"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "Price"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "CH-100"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", "100"))
		require.NoError(t, f.SetCellValue("Sheet1", "B3", "200"))
		require.NoError(t, f.MergeCell("Sheet1", "A2", "A3"))
	})

	grids, _, err := NewWorkbookReader().Read(data)
	require.NoError(t, err)
	require.Len(t, grids, 1)

	grid := grids[0].Grid
	require.Len(t, grid, 3)
	// The merge anchor's value appears in every covered cell.
	assert.Equal(t, "CH-100", catalog.NormalizeCell(grid[1][0]))
	assert.Equal(t, "CH-100", catalog.NormalizeCell(grid[2][0]))
}

func TestReadSkipsEmptySheets(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		_, err := f.NewSheet("Empty")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "x"))
	})

	grids, alerts, err := NewWorkbookReader().Read(data)
	require.NoError(t, err)
	assert.Empty(t, alerts)
	require.Len(t, grids, 1)
	assert.Equal(t, "Sheet1", grids[0].Name)
}

func TestReadRejectsGarbage(t *testing.T) {
	_, _, err := NewWorkbookReader().Read([]byte("not an xlsx file"))
	require.Error(t, err)
}
