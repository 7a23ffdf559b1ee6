package app

import (
	"context"
	"fmt"

	"pricelist/domain/catalog"
	"pricelist/domain/search"
	"pricelist/internal"
	"pricelist/internal/errors"
	"pricelist/ports"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// CatalogService coordinates workbook ingestion and record search.
type CatalogService struct {
	store  ports.RecordStore
	reader ports.GridReader
	log    *internal.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store ports.RecordStore, reader ports.GridReader, log *internal.Logger) *CatalogService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &CatalogService{store: store, reader: reader, log: log}
}

// WorkbookOptions apply to every sheet of one uploaded workbook.
type WorkbookOptions struct {
	catalog.IngestOptions
	// Replace deletes each ingested sheet's existing records before
	// inserting. Without it, sheets are appended as new batches.
	Replace bool
}

// PriceSummary describes the prices of one ingested sheet.
type PriceSummary struct {
	Count  int   `json:"count"`
	Min    int64 `json:"min"`
	Median int64 `json:"median"`
	Max    int64 `json:"max"`
}

// SheetSummary reports one sheet's ingestion outcome.
type SheetSummary struct {
	Sheet    string            `json:"sheet"`
	Mode     catalog.SheetMode `json:"mode"`
	Inserted int               `json:"inserted"`
	Skipped  int               `json:"skipped"`
	Deleted  int64             `json:"deleted"`
	Alerts   []string          `json:"alerts,omitempty"`
	SkipRows []catalog.RowSkip `json:"skip_rows,omitempty"`
	Prices   *PriceSummary     `json:"prices,omitempty"`
}

// WorkbookResult is the outcome of one upload run.
type WorkbookResult struct {
	RunID   string         `json:"run_id"`
	Sheets  []SheetSummary `json:"sheets"`
	Alerts  []string       `json:"alerts,omitempty"`
	Records int            `json:"records"`
}

// IngestWorkbook reads every sheet of the uploaded workbook, normalizes them
// concurrently (sheets share no state, so they can run in parallel), and
// persists each sheet as one all-or-nothing batch. A sheet that produced no
// records is reported, never inserted.
func (s *CatalogService) IngestWorkbook(ctx context.Context, data []byte, opts WorkbookOptions) (*WorkbookResult, error) {
	grids, alerts, err := s.reader.Read(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read workbook")
	}

	result := &WorkbookResult{
		RunID:  uuid.NewString(),
		Alerts: alerts,
	}
	s.log.Info("ingest run %s: %d sheets", result.RunID, len(grids))

	ingested := make([]catalog.IngestResult, len(grids))
	g, gctx := errgroup.WithContext(ctx)
	for i, grid := range grids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ingested[i] = catalog.IngestSheet(grid.Grid, grid.Name, opts.IngestOptions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "workbook ingestion cancelled")
	}

	for _, ing := range ingested {
		summary := SheetSummary{
			Sheet:    ing.Sheet,
			Mode:     ing.Mode,
			Skipped:  ing.Skipped,
			Alerts:   ing.Alerts,
			SkipRows: ing.SkipRows,
		}

		if len(ing.Records) == 0 {
			summary.Alerts = append(summary.Alerts,
				fmt.Sprintf("sheet %q produced no records, nothing stored", ing.Sheet))
			result.Sheets = append(result.Sheets, summary)
			continue
		}

		if opts.Replace {
			deleted, err := s.store.ReplaceSheet(ctx, ing.Sheet, ing.Records)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to replace sheet %q", ing.Sheet)
			}
			summary.Deleted = deleted
		} else {
			if err := s.store.BulkInsert(ctx, ing.Records); err != nil {
				return nil, errors.Wrapf(err, "failed to store sheet %q", ing.Sheet)
			}
		}

		summary.Inserted = len(ing.Records)
		summary.Prices = summarizePrices(ing.Records)
		result.Records += summary.Inserted
		result.Sheets = append(result.Sheets, summary)

		s.log.Info("ingest run %s: sheet %q stored %d records (%d skipped)",
			result.RunID, ing.Sheet, summary.Inserted, summary.Skipped)
	}

	return result, nil
}

// summarizePrices reports min, median and max over the records with a
// resolvable price. Resolution runs through PreferredPrice, so records whose
// price lives in a list-price detail column still count. Sheets without any
// priced record get no summary.
func summarizePrices(records []catalog.ProductRecord) *PriceSummary {
	var prices []float64
	for _, rec := range records {
		if n, ok := catalog.PreferredPrice(rec); ok {
			prices = append(prices, float64(n))
		}
	}
	if len(prices) == 0 {
		return nil
	}

	min, err := stats.Min(prices)
	if err != nil {
		return nil
	}
	median, err := stats.Median(prices)
	if err != nil {
		return nil
	}
	max, err := stats.Max(prices)
	if err != nil {
		return nil
	}

	return &PriceSummary{
		Count:  len(prices),
		Min:    int64(min),
		Median: int64(median),
		Max:    int64(max),
	}
}

// Search validates the query and runs it against the record store.
func (s *CatalogService) Search(ctx context.Context, q, sheet, sort string, page, perPage int) (search.Result, error) {
	query, err := search.ParseQuery(q, sheet, sort, page, perPage)
	if err != nil {
		return search.Result{}, err
	}
	res, err := s.store.Search(ctx, query)
	if err != nil {
		return search.Result{}, errors.Wrap(err, "search failed")
	}
	return res, nil
}

// Browse lists stored records by sheet and row order.
func (s *CatalogService) Browse(ctx context.Context, q ports.BrowseQuery) (search.Result, error) {
	res, err := s.store.Browse(ctx, q)
	if err != nil {
		return search.Result{}, errors.Wrap(err, "browse failed")
	}
	return res, nil
}

// Sheets returns the distinct sheet names currently stored.
func (s *CatalogService) Sheets(ctx context.Context) ([]string, error) {
	sheets, err := s.store.ListSheets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sheets")
	}
	return sheets, nil
}

// DeleteSheet removes every record of a sheet.
func (s *CatalogService) DeleteSheet(ctx context.Context, sheet string) (int64, error) {
	if sheet == "" {
		return 0, errors.InvalidInput("sheet name is required")
	}
	deleted, err := s.store.DeleteBySheet(ctx, sheet)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete sheet %q", sheet)
	}
	s.log.Info("deleted %d records from sheet %q", deleted, sheet)
	return deleted, nil
}
