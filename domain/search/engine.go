package search

import (
	"sort"
	"strings"

	"pricelist/domain/catalog"
)

// WellKnownDetailKeys are the detail keys that participate in search next to
// the model and description fields. Key lookup is case-sensitive; matching
// on the value is not.
var WellKnownDetailKeys = []string{"TITLE", "NAME", "MODEL"}

// Token match weights: a hit on the model outweighs one on the description
// or on a well-known detail key.
const (
	modelWeight  = 3
	descWeight   = 1
	detailWeight = 1
)

// Result is a page of matching records plus its pagination metadata.
type Result struct {
	Records    []catalog.ProductRecord `json:"records"`
	Pagination Pagination              `json:"pagination"`
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// TokenScore computes the weighted contribution of one token against one
// record. A zero score means the token matched no searchable field.
func TokenScore(rec catalog.ProductRecord, token string) int {
	score := 0
	if containsFold(rec.Model, token) {
		score += modelWeight
	}
	if rec.Description != "" && containsFold(rec.Description, token) {
		score += descWeight
	}
	for _, key := range WellKnownDetailKeys {
		if v, ok := rec.Details[key]; ok && containsFold(v, token) {
			score += detailWeight
			break // counted once per token
		}
	}
	return score
}

// Matches reports whether every token hits at least one searchable field.
func Matches(rec catalog.ProductRecord, tokens []string) bool {
	for _, token := range tokens {
		if TokenScore(rec, token) == 0 {
			return false
		}
	}
	return true
}

// Score sums the per-token weights for a matching record.
func Score(rec catalog.ProductRecord, tokens []string) int {
	total := 0
	for _, token := range tokens {
		total += TokenScore(rec, token)
	}
	return total
}

type scored struct {
	rec   catalog.ProductRecord
	score int
}

// Engine filters, scores, orders and pages records entirely in memory. It
// mirrors the SQL the persistent store compiles, expression for expression,
// so both backends order identically.
type Engine struct{}

// Search runs the query against the given records. Records are not mutated;
// the returned slice holds copies in result order.
func (Engine) Search(records []catalog.ProductRecord, q Query) Result {
	matched := make([]scored, 0, len(records))
	for _, rec := range records {
		if q.Sheet != "" && rec.Sheet != q.Sheet {
			continue
		}
		if !Matches(rec, q.Tokens) {
			continue
		}
		matched = append(matched, scored{rec: rec, score: Score(rec, q.Tokens)})
	}

	sortScored(matched, q.Sort)

	total := len(matched)
	page := Paginate(total, q.Page, q.PerPage)

	records = []catalog.ProductRecord{}
	if page.From > 0 {
		for _, s := range matched[page.From-1 : page.To] {
			records = append(records, s.rec)
		}
	}
	return Result{Records: records, Pagination: page}
}

func sortScored(matched []scored, mode SortMode) {
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch mode {
		case SortPriceAsc:
			if c := comparePrice(a.rec.Price, b.rec.Price, false); c != 0 {
				return c < 0
			}
		case SortPriceDesc:
			if c := comparePrice(a.rec.Price, b.rec.Price, true); c != 0 {
				return c < 0
			}
		case SortNewest:
			// fall through to the id tie-break below
		default: // relevance
			if a.score != b.score {
				return a.score > b.score
			}
			if a.rec.Sheet != b.rec.Sheet {
				return a.rec.Sheet < b.rec.Sheet
			}
			if a.rec.RowIndex != b.rec.RowIndex {
				return a.rec.RowIndex < b.rec.RowIndex
			}
		}
		return a.rec.ID > b.rec.ID
	})
}

// comparePrice orders prices with NULLs last regardless of direction.
func comparePrice(a, b *int64, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a == *b:
		return 0
	case (*a < *b) != desc:
		return -1
	default:
		return 1
	}
}
