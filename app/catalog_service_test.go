package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricelist/adapters/memory"
	"pricelist/domain/catalog"
	"pricelist/internal/errors"
	"pricelist/ports"
)

// fakeReader serves a fixed set of grids regardless of the uploaded bytes.
type fakeReader struct {
	grids  []catalog.NamedGrid
	alerts []string
	err    error
}

func (f *fakeReader) Read(_ []byte) ([]catalog.NamedGrid, []string, error) {
	return f.grids, f.alerts, f.err
}

func workbook() *fakeReader {
	return &fakeReader{grids: []catalog.NamedGrid{
		{Name: "Chairs", Grid: catalog.RawGrid{
			{"Model", "Description", "Price"},
			{"CH-100", "Stackable chair", "1.250.000"},
			{"", "Armrest variant", "1.450.000"},
		}},
		{Name: "Tables", Grid: catalog.RawGrid{
			{"Model", "Price"},
			{"TB-10", "3.000.000"},
		}},
	}}
}

func newService(reader ports.GridReader) (*CatalogService, *memory.RecordStore) {
	store := memory.NewRecordStore()
	return NewCatalogService(store, reader, nil), store
}

func TestIngestWorkbook(t *testing.T) {
	svc, store := newService(workbook())

	result, err := svc.IngestWorkbook(context.Background(), nil, WorkbookOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.Records)
	assert.Equal(t, 3, store.Len())
	require.Len(t, result.Sheets, 2)

	chairs := result.Sheets[0]
	assert.Equal(t, "Chairs", chairs.Sheet)
	assert.Equal(t, catalog.ModeTable, chairs.Mode)
	assert.Equal(t, 2, chairs.Inserted)

	require.NotNil(t, chairs.Prices)
	assert.Equal(t, 2, chairs.Prices.Count)
	assert.Equal(t, int64(1250000), chairs.Prices.Min)
	assert.Equal(t, int64(1450000), chairs.Prices.Max)

	sheets, err := svc.Sheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Chairs", "Tables"}, sheets)
}

func TestIngestWorkbookPriceSummaryUsesDetailKeys(t *testing.T) {
	// No price column: the amount sits in an MSRP detail column and must
	// still feed the sheet's price summary.
	reader := &fakeReader{grids: []catalog.NamedGrid{
		{Name: "Sofas", Grid: catalog.RawGrid{
			{"Model", "Description", "MSRP"},
			{"SF-1", "Two-seater", "2.000.000"},
			{"SF-2", "Three-seater", "2.500.000"},
		}},
	}}
	svc, _ := newService(reader)

	result, err := svc.IngestWorkbook(context.Background(), nil, WorkbookOptions{})
	require.NoError(t, err)
	require.Len(t, result.Sheets, 1)

	prices := result.Sheets[0].Prices
	require.NotNil(t, prices)
	assert.Equal(t, 2, prices.Count)
	assert.Equal(t, int64(2000000), prices.Min)
	assert.Equal(t, int64(2500000), prices.Max)
}

func TestIngestWorkbookMatchesSequentialIngest(t *testing.T) {
	reader := workbook()
	svc, store := newService(reader)
	ctx := context.Background()

	_, err := svc.IngestWorkbook(ctx, nil, WorkbookOptions{})
	require.NoError(t, err)

	// Each stored sheet must hold exactly what a direct sheet-by-sheet run
	// produces, concurrency aside.
	for _, grid := range reader.grids {
		want := catalog.IngestSheet(grid.Grid, grid.Name, catalog.IngestOptions{})

		result, err := store.Browse(ctx, ports.BrowseQuery{Sheet: grid.Name})
		require.NoError(t, err)

		got := result.Records
		require.Len(t, got, len(want.Records))
		for i := range got {
			got[i].ID = 0 // assigned by the store, not by ingestion
		}
		assert.Equal(t, want.Records, got)
	}
}

func TestIngestWorkbookReplace(t *testing.T) {
	svc, store := newService(workbook())
	ctx := context.Background()

	_, err := svc.IngestWorkbook(ctx, nil, WorkbookOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, store.Len())

	// A second replace run swaps each sheet's batch instead of stacking it.
	result, err := svc.IngestWorkbook(ctx, nil, WorkbookOptions{Replace: true})
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, int64(2), result.Sheets[0].Deleted)
	assert.Equal(t, int64(1), result.Sheets[1].Deleted)
}

func TestIngestWorkbookAppendByDefault(t *testing.T) {
	svc, store := newService(workbook())
	ctx := context.Background()

	_, err := svc.IngestWorkbook(ctx, nil, WorkbookOptions{})
	require.NoError(t, err)
	_, err = svc.IngestWorkbook(ctx, nil, WorkbookOptions{})
	require.NoError(t, err)

	assert.Equal(t, 6, store.Len())
}

func TestIngestWorkbookEmptySheet(t *testing.T) {
	reader := &fakeReader{grids: []catalog.NamedGrid{
		{Name: "Blank", Grid: catalog.RawGrid{}},
	}}
	svc, store := newService(reader)

	result, err := svc.IngestWorkbook(context.Background(), nil, WorkbookOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, store.Len())
	require.Len(t, result.Sheets, 1)
	assert.Zero(t, result.Sheets[0].Inserted)
	assert.NotEmpty(t, result.Sheets[0].Alerts)
	assert.Nil(t, result.Sheets[0].Prices)
}

func TestIngestWorkbookReaderError(t *testing.T) {
	svc, _ := newService(&fakeReader{err: errors.New(errors.CodeInternalError, "corrupt workbook")})

	_, err := svc.IngestWorkbook(context.Background(), nil, WorkbookOptions{})
	require.Error(t, err)
}

func TestIngestWorkbookKeepsReaderAlerts(t *testing.T) {
	reader := workbook()
	reader.alerts = []string{`sheet "Hidden": unreadable`}
	svc, _ := newService(reader)

	result, err := svc.IngestWorkbook(context.Background(), nil, WorkbookOptions{})
	require.NoError(t, err)
	assert.Contains(t, result.Alerts, `sheet "Hidden": unreadable`)
}

func TestIngestWorkbookDeterministicSheetOrder(t *testing.T) {
	// Sheets are normalized concurrently but reported in workbook order.
	for run := 0; run < 5; run++ {
		svc, _ := newService(workbook())
		result, err := svc.IngestWorkbook(context.Background(), nil, WorkbookOptions{})
		require.NoError(t, err)
		require.Len(t, result.Sheets, 2)
		assert.Equal(t, "Chairs", result.Sheets[0].Sheet)
		assert.Equal(t, "Tables", result.Sheets[1].Sheet)
	}
}

func TestServiceSearch(t *testing.T) {
	svc, _ := newService(workbook())
	ctx := context.Background()

	_, err := svc.IngestWorkbook(ctx, nil, WorkbookOptions{})
	require.NoError(t, err)

	result, err := svc.Search(ctx, "stackable chair", "", "", 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "CH-100", result.Records[0].Model)

	_, err = svc.Search(ctx, "   ", "", "", 1, 20)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidQuery, errors.GetCode(err))
}

func TestServiceDeleteSheet(t *testing.T) {
	svc, store := newService(workbook())
	ctx := context.Background()

	_, err := svc.IngestWorkbook(ctx, nil, WorkbookOptions{})
	require.NoError(t, err)

	deleted, err := svc.DeleteSheet(ctx, "Chairs")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 1, store.Len())

	_, err = svc.DeleteSheet(ctx, "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
