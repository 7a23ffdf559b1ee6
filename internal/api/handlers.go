package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"pricelist/app"
	"pricelist/domain/catalog"
	"pricelist/internal/errors"
	"pricelist/ports"
)

// envelope is the JSON response shape shared by every endpoint.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"pagination,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to write response: %v", err)
	}
}

// writeError maps application error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidQuery:
		status = http.StatusUnprocessableEntity
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	s.writeJSON(w, status, envelope{Success: false, Message: err.Error()})
}

func intQuery(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.catalog.Search(r.Context(),
		q.Get("q"), q.Get("sheet"), q.Get("sort"),
		intQuery(r, "page", 1), intQuery(r, "per_page", 0))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    result.Records,
		Meta:    result.Pagination,
	})
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.catalog.Browse(r.Context(), ports.BrowseQuery{
		Sheet:   q.Get("sheet"),
		Search:  q.Get("search"),
		Page:    intQuery(r, "page", 1),
		PerPage: intQuery(r, "per_page", 0),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    result.Records,
		Meta:    result.Pagination,
	})
}

func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := s.catalog.Sheets(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: sheets})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("invalid upload: %v", err)))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, errors.InvalidInput(`multipart field "file" is required`))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, errors.Wrap(err, "failed to read upload"))
		return
	}

	opts := s.uploadOptions(r)
	result, err := s.catalog.IngestWorkbook(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, envelope{Success: true, Data: result})
}

// uploadOptions reads the per-upload ingestion switches from the form.
// Fields left empty fall back to the server-wide defaults.
func (s *Server) uploadOptions(r *http.Request) app.WorkbookOptions {
	form := r.Form
	boolField := func(key string, fallback bool) bool {
		v, err := strconv.ParseBool(form.Get(key))
		if err != nil {
			return fallback
		}
		return v
	}
	listField := func(key string) []string {
		var out []string
		for _, part := range strings.Split(form.Get(key), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}

	startRow, _ := strconv.Atoi(form.Get("start_row"))
	return app.WorkbookOptions{
		Replace: boolField("replace", false),
		IngestOptions: catalog.IngestOptions{
			StartRow:         startRow,
			NameColumn:       form.Get("name_column"),
			DescColumn:       form.Get("desc_column"),
			PriceColumn:      form.Get("price_column"),
			ExcludedColumns:  listField("exclude_columns"),
			ExcludedRowKeys:  listField("exclude_rows"),
			AllowPlaceholder: boolField("allow_placeholder", s.allowPlaceholder),
			StopAtBlankRow:   boolField("stop_at_blank_row", s.stopAtBlankRow),
			Report:           boolField("report", false),
		},
	}
}

func (s *Server) handleDeleteSheet(w http.ResponseWriter, r *http.Request) {
	sheet := r.URL.Query().Get("sheet")
	deleted, err := s.catalog.DeleteSheet(r.Context(), sheet)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: fmt.Sprintf("deleted %d records from sheet %q", deleted, sheet),
	})
}
