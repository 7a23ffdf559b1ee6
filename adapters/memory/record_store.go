package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pricelist/domain/catalog"
	"pricelist/domain/search"
	"pricelist/ports"
)

// RecordStore is an in-memory RecordStore used by tests and local runs. It
// delegates matching and ordering to the search engine, so it behaves like
// the persistent store for every query it can serve.
type RecordStore struct {
	mu      sync.RWMutex
	records []catalog.ProductRecord
	nextID  int64
	engine  search.Engine
}

var _ ports.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{nextID: 1}
}

// BulkInsert appends a batch of records, assigning ids in insertion order.
func (s *RecordStore) BulkInsert(_ context.Context, records []catalog.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(records)
	return nil
}

func (s *RecordStore) insert(records []catalog.ProductRecord) {
	for _, rec := range records {
		rec.ID = s.nextID
		s.nextID++
		s.records = append(s.records, rec)
	}
}

// DeleteBySheet removes every record of a sheet and reports how many.
func (s *RecordStore) DeleteBySheet(_ context.Context, sheet string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteSheet(sheet), nil
}

func (s *RecordStore) deleteSheet(sheet string) int64 {
	kept := s.records[:0]
	var deleted int64
	for _, rec := range s.records {
		if rec.Sheet == sheet {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return deleted
}

// ReplaceSheet deletes a sheet's records and inserts the replacement batch
// under one lock, mirroring the transactional store.
func (s *RecordStore) ReplaceSheet(_ context.Context, sheet string, records []catalog.ProductRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := s.deleteSheet(sheet)
	s.insert(records)
	return deleted, nil
}

// Search runs the query through the in-memory engine.
func (s *RecordStore) Search(_ context.Context, q search.Query) (search.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Search(s.records, q), nil
}

// Browse lists records ordered by sheet, row index and recency.
func (s *RecordStore) Browse(_ context.Context, q ports.BrowseQuery) (search.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]catalog.ProductRecord, 0, len(s.records))
	for _, rec := range s.records {
		if q.Sheet != "" && rec.Sheet != q.Sheet {
			continue
		}
		if q.Search != "" && !matchesBrowse(rec, q.Search) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Sheet != b.Sheet {
			return a.Sheet < b.Sheet
		}
		if a.RowIndex != b.RowIndex {
			return a.RowIndex < b.RowIndex
		}
		return a.ID > b.ID
	})

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = search.DefaultPerPage
	}
	if perPage > search.MaxPerPage {
		perPage = search.MaxPerPage
	}

	pagination := search.Paginate(len(matched), page, perPage)
	result := search.Result{Records: []catalog.ProductRecord{}, Pagination: pagination}
	if pagination.From > 0 {
		result.Records = append(result.Records, matched[pagination.From-1:pagination.To]...)
	}
	return result, nil
}

func matchesBrowse(rec catalog.ProductRecord, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(rec.Model), term) ||
		strings.Contains(strings.ToLower(rec.Description), term)
}

// ListSheets returns the distinct sheet names currently stored.
func (s *RecordStore) ListSheets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var sheets []string
	for _, rec := range s.records {
		if !seen[rec.Sheet] {
			seen[rec.Sheet] = true
			sheets = append(sheets, rec.Sheet)
		}
	}
	sort.Strings(sheets)
	return sheets, nil
}

// Len reports how many records are stored.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
