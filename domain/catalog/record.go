package catalog

// Cell is a raw spreadsheet cell value: a string, a number, or nil when the
// cell is empty.
type Cell = any

// RawGrid is the rectangular cell grid of one sheet. It only exists for the
// duration of an ingestion run.
type RawGrid [][]Cell

// NamedGrid pairs a grid with the sheet name it was read from.
type NamedGrid struct {
	Name string
	Grid RawGrid
}

// Details maps a cleaned column header (original case preserved) to the
// resolved cell value. Values are always scalar strings; anything non-scalar
// is flattened to its display form during projection.
type Details map[string]string

// PlaceholderModel is the model name used when a row has no resolvable name
// and the caller allows placeholders.
const PlaceholderModel = "Unknown"

// ProductRecord is the normalized product row produced by ingestion and
// persisted by the record store.
type ProductRecord struct {
	ID          int64   `json:"id" db:"id"`
	Sheet       string  `json:"sheet" db:"sheet"`
	RowIndex    int     `json:"row_index" db:"row_index"`
	Model       string  `json:"model" db:"model"`
	Description string  `json:"description,omitempty" db:"description"`
	Price       *int64  `json:"price" db:"price"`
	Details     Details `json:"details" db:"-"`
}

// preferredPriceKeys is the detail-key fallback chain used when a record's
// stored price is missing or zero. List prices take precedence over partner
// and bottom prices.
var preferredPriceKeys = struct {
	before []string
	after  []string
}{
	before: []string{"Price List (IDR) to DPP", "Price List (IDR) To DPP", "DPP"},
	after: []string{
		"Price List (IDR) MSRP",
		"MSRP",
		"Price (MSRP)",
		"Price",
		"Partner Price",
		"Bottom Price",
	},
}

// PreferredPrice resolves the display price for a record: list-price detail
// keys first, then the stored price, then the remaining detail keys.
func PreferredPrice(rec ProductRecord) (int64, bool) {
	for _, key := range preferredPriceKeys.before {
		if v, ok := rec.Details[key]; ok {
			if n, ok := ParsePrice(v); ok && n > 0 {
				return n, true
			}
		}
	}
	if rec.Price != nil && *rec.Price > 0 {
		return *rec.Price, true
	}
	for _, key := range preferredPriceKeys.after {
		if v, ok := rec.Details[key]; ok {
			if n, ok := ParsePrice(v); ok && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}
