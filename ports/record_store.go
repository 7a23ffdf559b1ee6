package ports

import (
	"context"

	"pricelist/domain/catalog"
	"pricelist/domain/search"
)

// BrowseQuery pages through stored records without relevance filtering.
// Search, when set, narrows on model or description substring.
type BrowseQuery struct {
	Sheet   string
	Search  string
	Page    int
	PerPage int
}

// RecordStore is the persistence boundary for product records. Sheet-level
// replacement is the only update path: records are never modified in place.
type RecordStore interface {
	// BulkInsert stores a batch of records as a single operation.
	BulkInsert(ctx context.Context, records []catalog.ProductRecord) error

	// DeleteBySheet removes every record of a sheet and reports how many.
	DeleteBySheet(ctx context.Context, sheet string) (int64, error)

	// ReplaceSheet atomically deletes a sheet's records and inserts the
	// replacement batch. Nothing is kept from a failed replacement.
	ReplaceSheet(ctx context.Context, sheet string, records []catalog.ProductRecord) (deleted int64, err error)

	// Search runs a validated relevance query against stored records.
	Search(ctx context.Context, q search.Query) (search.Result, error)

	// Browse lists records ordered by sheet, row index and recency.
	Browse(ctx context.Context, q BrowseQuery) (search.Result, error)

	// ListSheets returns the distinct sheet names currently stored.
	ListSheets(ctx context.Context) ([]string, error)
}
