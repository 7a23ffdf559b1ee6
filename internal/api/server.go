package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pricelist/app"
	"pricelist/internal"
)

// Server is the HTTP surface over the catalog service.
type Server struct {
	router  *chi.Mux
	catalog *app.CatalogService
	log     *internal.Logger
	// uploads larger than this are rejected before parsing
	maxUploadBytes int64
	// ingestion defaults applied when an upload omits the matching field
	allowPlaceholder bool
	stopAtBlankRow   bool
}

// Config holds HTTP server configuration.
type Config struct {
	MaxUploadBytes int64
	// Defaults for uploads that do not set the corresponding form field.
	AllowPlaceholder bool
	StopAtBlankRow   bool
}

// NewServer creates the HTTP server and wires its routes.
func NewServer(catalog *app.CatalogService, log *internal.Logger, cfg Config) *Server {
	if log == nil {
		log = internal.DefaultLogger
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}

	s := &Server{
		router:           chi.NewRouter(),
		catalog:          catalog,
		log:              log,
		maxUploadBytes:   cfg.MaxUploadBytes,
		allowPlaceholder: cfg.AllowPlaceholder,
		stopAtBlankRow:   cfg.StopAtBlankRow,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.handleBrowse)
		r.Get("/search", s.handleSearch)
		r.Get("/sheets", s.handleSheets)
		r.Post("/upload", s.handleUpload)
		r.Delete("/sheet", s.handleDeleteSheet)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
