package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"pricelist/domain/catalog"
	"pricelist/domain/search"
	"pricelist/ports"

	"github.com/jmoiron/sqlx"
)

// productRepository implements the RecordStore interface on PostgreSQL
type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new product record store
func NewProductRepository(db *sqlx.DB) ports.RecordStore {
	return &productRepository{db: db}
}

const insertQuery = `INSERT INTO products (
	sheet, row_index, model, description, price, details, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, now(), now())`

// BulkInsert stores a batch of records inside one transaction.
func (r *productRepository) BulkInsert(ctx context.Context, records []catalog.ProductRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRecords(ctx, tx, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sqlx.Tx, records []catalog.ProductRecord) error {
	stmt, err := tx.PreparexContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		detailsJSON, err := json.Marshal(rec.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal details for %q: %w", rec.Model, err)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.Sheet, rec.RowIndex, rec.Model,
			nullString(rec.Description), rec.Price, detailsJSON,
		); err != nil {
			return fmt.Errorf("failed to insert record %q: %w", rec.Model, err)
		}
	}
	return nil
}

// DeleteBySheet removes every record of a sheet
func (r *productRepository) DeleteBySheet(ctx context.Context, sheet string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE sheet = $1`, sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sheet %q: %w", sheet, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return deleted, nil
}

// ReplaceSheet deletes a sheet's records and inserts the replacement batch
// in a single transaction, so a failed replacement keeps nothing.
func (r *productRepository) ReplaceSheet(ctx context.Context, sheet string, records []catalog.ProductRecord) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE sheet = $1`, sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sheet %q: %w", sheet, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}

	if err := insertRecords(ctx, tx, records); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sheet replacement: %w", err)
	}
	return deleted, nil
}

// searchable JSON detail keys, matching the in-memory engine
var detailKeySQL = []string{`details->>'TITLE'`, `details->>'NAME'`, `details->>'MODEL'`}

// Search compiles the relevance query to SQL: one all-fields predicate per
// token, a summed CASE expression for the score, and the sort mode's ORDER
// BY with NULL prices last.
func (r *productRepository) Search(ctx context.Context, q search.Query) (search.Result, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Sheet != "" {
		where = append(where, fmt.Sprintf("sheet = %s", arg(q.Sheet)))
	}

	var scoreParts []string
	for _, t := range q.LikeTokens {
		like := arg("%" + t + "%")

		fields := []string{
			fmt.Sprintf("model ILIKE %s", like),
			fmt.Sprintf("description ILIKE %s", like),
		}
		for _, key := range detailKeySQL {
			fields = append(fields, fmt.Sprintf("%s ILIKE %s", key, like))
		}
		where = append(where, "("+strings.Join(fields, " OR ")+")")

		scoreParts = append(scoreParts, fmt.Sprintf(
			"(CASE WHEN model ILIKE %[1]s THEN 3 ELSE 0 END)"+
				"+(CASE WHEN description ILIKE %[1]s THEN 1 ELSE 0 END)"+
				"+(CASE WHEN %[2]s ILIKE %[1]s OR %[3]s ILIKE %[1]s OR %[4]s ILIKE %[1]s THEN 1 ELSE 0 END)",
			like, detailKeySQL[0], detailKeySQL[1], detailKeySQL[2]))
	}
	scoreSQL := "(" + strings.Join(scoreParts, " + ") + ")"
	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var orderSQL string
	switch q.Sort {
	case search.SortPriceAsc:
		orderSQL = "ORDER BY price IS NULL, price ASC, id DESC"
	case search.SortPriceDesc:
		orderSQL = "ORDER BY price IS NULL, price DESC, id DESC"
	case search.SortNewest:
		orderSQL = "ORDER BY id DESC"
	default:
		orderSQL = "ORDER BY relevance DESC, sheet ASC, row_index ASC, id DESC"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products " + whereSQL
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return search.Result{}, fmt.Errorf("failed to count search results: %w", err)
	}

	page := search.Paginate(total, q.Page, q.PerPage)
	result := search.Result{Records: []catalog.ProductRecord{}, Pagination: page}
	if page.From == 0 {
		return result, nil
	}

	query := fmt.Sprintf(
		`SELECT id, sheet, row_index, model, COALESCE(description, '') AS description,
			price, details, %s AS relevance
		FROM products %s %s LIMIT %s OFFSET %s`,
		scoreSQL, whereSQL, orderSQL,
		arg(q.PerPage), arg((q.Page-1)*q.PerPage))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return search.Result{}, fmt.Errorf("failed to run search query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec         catalog.ProductRecord
			detailsJSON []byte
			relevance   int
		)
		if err := rows.Scan(&rec.ID, &rec.Sheet, &rec.RowIndex, &rec.Model,
			&rec.Description, &rec.Price, &detailsJSON, &relevance); err != nil {
			return search.Result{}, fmt.Errorf("failed to scan search row: %w", err)
		}
		if err := unmarshalDetails(detailsJSON, &rec); err != nil {
			return search.Result{}, err
		}
		result.Records = append(result.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return search.Result{}, fmt.Errorf("failed to read search rows: %w", err)
	}
	return result, nil
}

// Browse lists records without relevance filtering, ordered by sheet, row
// index and recency.
func (r *productRepository) Browse(ctx context.Context, q ports.BrowseQuery) (search.Result, error) {
	var (
		where = []string{"TRUE"}
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Sheet != "" {
		where = append(where, fmt.Sprintf("sheet = %s", arg(q.Sheet)))
	}
	if q.Search != "" {
		like := arg("%" + search.EscapeLike(q.Search) + "%")
		where = append(where, fmt.Sprintf("(model ILIKE %[1]s OR description ILIKE %[1]s)", like))
	}
	whereSQL := "WHERE " + strings.Join(where, " AND ")

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

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+whereSQL, args...).Scan(&total); err != nil {
		return search.Result{}, fmt.Errorf("failed to count records: %w", err)
	}

	pagination := search.Paginate(total, page, perPage)
	result := search.Result{Records: []catalog.ProductRecord{}, Pagination: pagination}
	if pagination.From == 0 {
		return result, nil
	}

	query := fmt.Sprintf(
		`SELECT id, sheet, row_index, model, COALESCE(description, '') AS description, price, details
		FROM products %s
		ORDER BY sheet ASC, row_index ASC, id DESC
		LIMIT %s OFFSET %s`,
		whereSQL, arg(perPage), arg((page-1)*perPage))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return search.Result{}, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec         catalog.ProductRecord
			detailsJSON []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Sheet, &rec.RowIndex, &rec.Model,
			&rec.Description, &rec.Price, &detailsJSON); err != nil {
			return search.Result{}, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := unmarshalDetails(detailsJSON, &rec); err != nil {
			return search.Result{}, err
		}
		result.Records = append(result.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return search.Result{}, fmt.Errorf("failed to read records: %w", err)
	}
	return result, nil
}

// ListSheets returns the distinct sheet names currently stored
func (r *productRepository) ListSheets(ctx context.Context) ([]string, error) {
	var sheets []string
	err := r.db.SelectContext(ctx, &sheets,
		`SELECT DISTINCT sheet FROM products ORDER BY sheet`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return sheets, nil
}

func unmarshalDetails(data []byte, rec *catalog.ProductRecord) error {
	rec.Details = make(catalog.Details)
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &rec.Details); err != nil {
		return fmt.Errorf("failed to unmarshal details for record %d: %w", rec.ID, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
