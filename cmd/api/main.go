package main

import (
	"context"
	"log"
	"net/http"

	"pricelist/adapters/excel"
	"pricelist/adapters/postgres"
	"pricelist/app"
	"pricelist/internal"
	"pricelist/internal/api"
	"pricelist/internal/config"
	"pricelist/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store := postgres.NewProductRepository(db)
	reader := excel.NewWorkbookReader()
	catalog := app.NewCatalogService(store, reader, logger)

	server := api.NewServer(catalog, logger, api.Config{
		MaxUploadBytes:   cfg.Ingest.MaxUploadBytes,
		AllowPlaceholder: cfg.Ingest.AllowPlaceholderModel,
		StopAtBlankRow:   cfg.Ingest.StopAtBlankRow,
	})

	addr := ":" + cfg.Server.Port
	logger.Info("starting API server on %s", addr)
	if err := http.ListenAndServe(addr, server); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
