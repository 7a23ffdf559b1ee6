package ports

import (
	"pricelist/domain/catalog"
)

// GridReader turns uploaded spreadsheet bytes into one raw grid per sheet.
// Unreadable sheets become alerts rather than failures, so one corrupt tab
// never loses the rest of the workbook.
type GridReader interface {
	Read(data []byte) (grids []catalog.NamedGrid, alerts []string, err error)
}
