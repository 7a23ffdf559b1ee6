package catalog

import (
	"fmt"
)

// IngestOptions configure one sheet-ingestion run.
type IngestOptions struct {
	// StartRow is a 1-based offset into the raw grid used to skip preamble
	// rows before the real header. Zero or one both mean the first row.
	StartRow int
	// NameColumn, DescColumn and PriceColumn override header detection with
	// an explicit cleaned header name.
	NameColumn  string
	DescColumn  string
	PriceColumn string
	// ExcludedColumns and ExcludedRowKeys carry the user's exclusion rules.
	ExcludedColumns []string
	ExcludedRowKeys []string
	// AllowPlaceholder keeps rows without a model name, see ProjectOptions.
	AllowPlaceholder bool
	// StopAtBlankRow truncates the sheet at the first fully empty data row
	// instead of skipping blank rows and reading on.
	StopAtBlankRow bool
	// Report records a per-row skip reason for every dropped row.
	Report bool
}

// RowSkip is one skipped row and why, reported in Report mode. Row is the
// 1-based position in the original grid.
type RowSkip struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// IngestResult is the outcome of one sheet run. Ingestion always returns a
// result: sheet-level failures surface as alerts, never as errors.
type IngestResult struct {
	Sheet     string          `json:"sheet"`
	Mode      SheetMode       `json:"mode"`
	Records   []ProductRecord `json:"records"`
	Alerts    []string        `json:"alerts,omitempty"`
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	SkipRows  []RowSkip       `json:"skip_rows,omitempty"`
}

type gridRow struct {
	cells []Cell
	pos   int // 1-based position in the original grid
}

// IngestSheet converts one raw grid into normalized product records. The
// header classifier picks table or simple mode, carry state is threaded
// across the whole sheet, and row_index numbers emitted records 1-based.
func IngestSheet(grid RawGrid, sheet string, opts IngestOptions) (result IngestResult) {
	result.Sheet = sheet

	defer func() {
		if r := recover(); r != nil {
			result.Alerts = append(result.Alerts,
				fmt.Sprintf("sheet %q: load failed: %v", sheet, r))
		}
	}()

	start := opts.StartRow
	if start < 1 {
		start = 1
	}
	if start > len(grid) {
		result.Alerts = append(result.Alerts,
			fmt.Sprintf("sheet %q: start row %d exceeds %d available rows", sheet, start, len(grid)))
		return result
	}

	rows := collectRows(grid, start, opts.StopAtBlankRow)
	if len(rows) == 0 {
		result.Alerts = append(result.Alerts, fmt.Sprintf("sheet %q: no data rows", sheet))
		return result
	}

	cls := ClassifyHeader(rows[0].cells, len(rows))
	result.Mode = cls.Mode

	if cls.Mode == ModeTable {
		applyColumnOverrides(&cls, opts)
		ingestTable(rows[1:], cls, opts, &result)
	} else {
		ingestSimple(rows, opts, &result)
	}
	return result
}

// collectRows slices the grid from the 1-based start row and drops rows that
// are entirely empty. With stopAtBlank the scan ends at the first empty row
// instead, treating the sheet as a single leading table.
func collectRows(grid RawGrid, start int, stopAtBlank bool) []gridRow {
	rows := make([]gridRow, 0, len(grid))
	for i := start - 1; i < len(grid); i++ {
		if RowKey(grid[i]) == "" {
			if stopAtBlank && len(rows) > 0 {
				break
			}
			continue
		}
		rows = append(rows, gridRow{cells: grid[i], pos: i + 1})
	}
	return rows
}

// applyColumnOverrides replaces detected column roles with the caller's
// explicit header choices, matched on the cleaned header name.
func applyColumnOverrides(cls *Classification, opts IngestOptions) {
	find := func(name string) int {
		if name == "" {
			return -1
		}
		for _, col := range cls.Columns {
			if col.Name == name {
				return col.Index
			}
		}
		return -1
	}
	if idx := find(opts.NameColumn); idx >= 0 {
		cls.NameCol = idx
	}
	if idx := find(opts.DescColumn); idx >= 0 {
		cls.DescCol = idx
	}
	if idx := find(opts.PriceColumn); idx >= 0 {
		cls.PriceCol = idx
	}
}

func ingestTable(rows []gridRow, cls Classification, opts IngestOptions, result *IngestResult) {
	carry := NewCarryState()
	popts := ProjectOptions{
		ExcludedColumns:  toSet(opts.ExcludedColumns),
		ExcludedRowKeys:  toSet(opts.ExcludedRowKeys),
		AllowPlaceholder: opts.AllowPlaceholder,
	}

	for _, row := range rows {
		rec, reason := ProjectRow(row.cells, cls, carry, popts)
		if rec == nil {
			result.Skipped++
			if opts.Report {
				result.SkipRows = append(result.SkipRows, RowSkip{Row: row.pos, Reason: reason})
			}
			continue
		}
		rec.Sheet = result.Sheet
		rec.RowIndex = len(result.Records) + 1
		result.Records = append(result.Records, *rec)
		result.Processed++
	}
}

// ingestSimple handles sheets without a discernible header row: column 0 is
// the model, column 1 the description, and every further column becomes a
// positional col_N detail key.
func ingestSimple(rows []gridRow, opts IngestOptions, result *IngestResult) {
	excludedRows := toSet(opts.ExcludedRowKeys)

	for _, row := range rows {
		key := RowKey(row.cells)
		if excludedRows[key] {
			result.Skipped++
			if opts.Report {
				result.SkipRows = append(result.SkipRows, RowSkip{Row: row.pos, Reason: SkipExcludedRow})
			}
			continue
		}

		var model, description string
		details := make(Details)
		for i, cell := range row.cells {
			v := NormalizeCell(cell)
			if v == "" {
				continue
			}
			switch i {
			case 0:
				model = v
			case 1:
				description = v
			default:
				details[fmt.Sprintf("col_%d", i)] = v
			}
		}

		if model == "" {
			if !opts.AllowPlaceholder {
				result.Skipped++
				if opts.Report {
					result.SkipRows = append(result.SkipRows, RowSkip{Row: row.pos, Reason: SkipNoModel})
				}
				continue
			}
			model = PlaceholderModel
		}

		result.Records = append(result.Records, ProductRecord{
			Sheet:       result.Sheet,
			RowIndex:    len(result.Records) + 1,
			Model:       model,
			Description: description,
			Details:     details,
		})
		result.Processed++
	}
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
