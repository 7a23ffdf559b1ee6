package catalog

// CarryState holds the last non-empty value seen for each column token while
// scanning a sheet top to bottom. It models merged-cell spreadsheets where a
// value is written once and applies to every row below it until overwritten.
// One CarryState belongs to exactly one sheet-ingestion run.
type CarryState map[string]string

// NewCarryState returns an empty carry state for one sheet run.
func NewCarryState() CarryState {
	return make(CarryState)
}

// ProjectOptions control how a single row is turned into a record.
type ProjectOptions struct {
	// ExcludedColumns drops detail columns by their cleaned header name.
	ExcludedColumns map[string]bool
	// ExcludedRowKeys drops whole rows whose leftmost filled cell matches.
	ExcludedRowKeys map[string]bool
	// AllowPlaceholder emits rows without a resolvable model under
	// PlaceholderModel instead of skipping them.
	AllowPlaceholder bool
}

// Row skip reasons reported in ingest results.
const (
	SkipEmptyRow    = "empty row"
	SkipExcludedRow = "excluded row key"
	SkipNoModel     = "no model name"
	SkipUnmapped    = "no mapped columns"
)

// RowKey returns the normalized value of the leftmost non-empty cell, the
// key row exclusions are matched against.
func RowKey(row []Cell) string {
	for _, cell := range row {
		if v := NormalizeCell(cell); v != "" {
			return v
		}
	}
	return ""
}

// ProjectRow applies the column map to one data row and emits a normalized
// record. Carry-down happens for every mapped column before field resolution,
// so a skipped row still feeds values to the rows below it. The returned
// reason is non-empty when the row was skipped; projection never fails.
func ProjectRow(row []Cell, cls Classification, carry CarryState, opts ProjectOptions) (*ProductRecord, string) {
	if len(cls.Columns) == 0 {
		return nil, SkipUnmapped
	}

	key := RowKey(row)
	if key == "" {
		return nil, SkipEmptyRow
	}
	if opts.ExcludedRowKeys[key] {
		return nil, SkipExcludedRow
	}

	cellAt := func(index int) string {
		if index < 0 || index >= len(row) {
			return ""
		}
		return NormalizeCell(row[index])
	}

	for _, col := range cls.Columns {
		if v := cellAt(col.Index); v != "" {
			carry[col.Token] = v
		}
	}

	model := cellAt(cls.NameCol)
	if model == "" {
		if col, ok := cls.column(cls.NameCol); ok {
			model = carry[col.Token]
		}
	}
	if model == "" {
		if !opts.AllowPlaceholder {
			return nil, SkipNoModel
		}
		model = PlaceholderModel
	}

	description := cellAt(cls.DescCol)
	if description == "" && cls.DescCol >= 0 {
		if col, ok := cls.column(cls.DescCol); ok {
			description = carry[col.Token]
		}
	}
	if description == "" && cls.DescCol < 0 {
		// No description column exists: the first long cell in the row
		// stands in for it.
		for i := range row {
			if v := cellAt(i); len(v) >= descFallbackLength {
				description = v
				break
			}
		}
	}

	var price *int64
	if cls.PriceCol >= 0 {
		raw := cellAt(cls.PriceCol)
		if raw == "" {
			if col, ok := cls.column(cls.PriceCol); ok {
				raw = carry[col.Token]
			}
		}
		if n, ok := ParsePrice(raw); ok {
			price = &n
		}
	}

	details := make(Details)
	for _, col := range cls.Columns {
		if col.Index == cls.NameCol || col.Index == cls.DescCol || col.Index == cls.PriceCol {
			continue
		}
		if opts.ExcludedColumns[col.Name] {
			continue
		}
		v := cellAt(col.Index)
		if v == "" {
			v = carry[col.Token]
		}
		if v != "" {
			details[col.Name] = v
		}
	}

	return &ProductRecord{
		Model:       model,
		Description: description,
		Price:       price,
		Details:     details,
	}, ""
}
