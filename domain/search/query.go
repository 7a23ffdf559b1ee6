package search

import (
	"strings"

	"pricelist/internal/errors"
)

// SortMode selects relevance ordering or one of the fixed orderings.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortNewest    SortMode = "newest"
)

// Pagination bounds.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	// MaxTokenLength clamps each query term before matching.
	MaxTokenLength = 128
)

// Query is a validated, tokenized search request. Tokens hold the clamped
// raw terms used for in-memory matching; LikeTokens are the same terms with
// LIKE wildcards escaped for SQL backends.
type Query struct {
	Raw        string
	Tokens     []string
	LikeTokens []string
	Sheet      string
	Sort       SortMode
	Page       int
	PerPage    int
}

// ParseQuery validates and tokenizes a raw search request. An empty query is
// the one hard error in the search path: a search with no criteria is
// meaningless. Page and per-page are clamped rather than rejected.
func ParseQuery(q, sheet, sort string, page, perPage int) (Query, error) {
	q = strings.TrimSpace(q)
	terms := strings.Fields(q)
	if len(terms) == 0 {
		return Query{}, errors.InvalidQuery(`query parameter "q" is required`)
	}

	tokens := make([]string, 0, len(terms))
	likeTokens := make([]string, 0, len(terms))
	for _, t := range terms {
		t = clampToken(t)
		tokens = append(tokens, t)
		likeTokens = append(likeTokens, EscapeLike(t))
	}

	mode := SortMode(sort)
	switch mode {
	case SortPriceAsc, SortPriceDesc, SortNewest:
	default:
		mode = SortRelevance
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return Query{
		Raw:        q,
		Tokens:     tokens,
		LikeTokens: likeTokens,
		Sheet:      sheet,
		Sort:       mode,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

func clampToken(t string) string {
	runes := []rune(t)
	if len(runes) > MaxTokenLength {
		return string(runes[:MaxTokenLength])
	}
	return t
}

// EscapeLike escapes LIKE wildcard characters in a user term so it only ever
// matches as a literal substring.
func EscapeLike(t string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(t)
}

// Pagination is the page metadata returned next to every result list, in the
// shape the listing clients consume.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	LastPage     int  `json:"last_page"`
	PerPage      int  `json:"per_page"`
	Total        int  `json:"total"`
	From         int  `json:"from"`
	To           int  `json:"to"`
	HasMorePages bool `json:"has_more_pages"`
}

// Paginate computes page metadata for a result set of the given size.
// Requesting a page past the end is not an error: From and To are zero and
// the caller returns an empty list.
func Paginate(total, page, perPage int) Pagination {
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	p := Pagination{
		CurrentPage:  page,
		LastPage:     lastPage,
		PerPage:      perPage,
		Total:        total,
		HasMorePages: page < lastPage,
	}

	if total > 0 && page <= lastPage {
		p.From = (page-1)*perPage + 1
		p.To = page * perPage
		if p.To > total {
			p.To = total
		}
	}
	return p
}
