package catalog

import (
	"regexp"
	"strings"
)

// SheetMode selects the ingestion strategy for one sheet.
type SheetMode string

const (
	// ModeTable treats the first row as a header naming each column.
	ModeTable SheetMode = "table"
	// ModeSimple assigns positional roles when no header row is found.
	ModeSimple SheetMode = "simple"
)

// Column is one mapped header cell. Index is the original column position in
// the grid, Name the cleaned header with case preserved, Token the normalized
// lookup key.
type Column struct {
	Index int
	Name  string
	Token string
}

// Classification is the outcome of header analysis for one sheet. NameCol,
// DescCol and PriceCol are grid column indexes, -1 when no column qualified.
type Classification struct {
	Mode     SheetMode
	Columns  []Column
	NameCol  int
	DescCol  int
	PriceCol int
}

// Column role matchers, evaluated in order: substring keyword set for the
// name column, whole-word set for the description column, substring set for
// the price column, then positional fallback for the name column only.
var (
	nameKeywords = []string{
		"product", "model", "name", "sku", "code",
		"title", "type", "part", "number",
	}
	descWords     = []string{"desc", "description", "keterangan", "note", "notes"}
	priceKeywords = []string{"price", "harga"}
)

// descFallbackLength is the minimum cleaned cell length at which a data cell
// is treated as the row's description when no description column exists.
const descFallbackLength = 100

var headerStrip = regexp.MustCompile(`[^a-z0-9 _-]+`)

// NormalizeHeader lowercases a header cell, strips everything outside
// letters, digits, space, hyphen and underscore, and joins the remaining
// words with underscores. "Price List (IDR)" becomes "price_list_idr".
func NormalizeHeader(h string) string {
	s := strings.ToLower(NormalizeCell(h))
	s = headerStrip.ReplaceAllString(s, "")
	fields := strings.Fields(s)
	return strings.Join(fields, "_")
}

// ClassifyHeader decides the sheet mode and column roles from the candidate
// header row. totalRows is the number of non-empty rows in the sheet; table
// mode requires at least two mapped headers and at least two rows.
func ClassifyHeader(headerRow []Cell, totalRows int) Classification {
	cls := Classification{NameCol: -1, DescCol: -1, PriceCol: -1}

	for i, cell := range headerRow {
		name := NormalizeCell(cell)
		token := NormalizeHeader(name)
		if token == "" {
			continue
		}
		cls.Columns = append(cls.Columns, Column{Index: i, Name: name, Token: token})
	}

	if len(cls.Columns) < 2 || totalRows < 2 {
		cls.Mode = ModeSimple
		cls.Columns = nil
		return cls
	}
	cls.Mode = ModeTable

	for _, col := range cls.Columns {
		if cls.NameCol < 0 && containsAny(col.Token, nameKeywords) {
			cls.NameCol = col.Index
		}
		if cls.DescCol < 0 && matchesWholeWord(col.Token, descWords) {
			cls.DescCol = col.Index
		}
		if cls.PriceCol < 0 && containsAny(col.Token, priceKeywords) {
			cls.PriceCol = col.Index
		}
	}

	// Positional fallback: the first mapped column names the product.
	if cls.NameCol < 0 {
		cls.NameCol = cls.Columns[0].Index
	}

	return cls
}

// column returns the mapped column at the given grid index.
func (c Classification) column(index int) (Column, bool) {
	for _, col := range c.Columns {
		if col.Index == index {
			return col, true
		}
	}
	return Column{}, false
}

func containsAny(token string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(token, kw) {
			return true
		}
	}
	return false
}

// matchesWholeWord reports whether any underscore- or hyphen-separated word
// of the token equals one of the given words. "description" matches "desc"
// only as a full word, so "descending_order" does not.
func matchesWholeWord(token string, words []string) bool {
	for _, part := range strings.FieldsFunc(token, func(r rune) bool {
		return r == '_' || r == '-'
	}) {
		for _, w := range words {
			if part == w {
				return true
			}
		}
	}
	return false
}
