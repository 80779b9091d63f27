package main

import (
	"fmt"
	"os"

	"github.com/landomo-com/landomo-norway-finn/config"
	"github.com/landomo-com/landomo-norway-finn/models"
	"github.com/landomo-com/landomo-norway-finn/scraper/finn"
	"github.com/landomo-com/landomo-norway-finn/server"
	"github.com/landomo-com/landomo-norway-finn/services"
	"github.com/landomo-com/landomo-norway-finn/storage"
	"github.com/landomo-com/landomo-norway-finn/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("=== FINN.no Real Estate Scraper starting ===")
	logger.Info("Config — market: %s | location: %s | pages: %d | rate: %dms | api-mode: %v",
		cfg.TransactionType, cfg.Location, cfg.PagesToScrape, cfg.RateLimitMs, cfg.UseSearchAPI)

	tx := models.TransactionType(cfg.TransactionType)
	if tx != models.TransactionSale && tx != models.TransactionRent {
		logger.Error("TRANSACTION_TYPE must be %q or %q, got %q",
			models.TransactionSale, models.TransactionRent, cfg.TransactionType)
		os.Exit(1)
	}

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	normalizer := services.NewNormalizer(logger)

	var listings []*models.Listing
	if cfg.UseSearchAPI {
		client := finn.NewAPIClient(cfg, logger)
		items, err := client.SearchAll(tx, cfg.PagesToScrape)
		if err != nil {
			logger.Error("Search API failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Fetched %d result items from the search API", len(items))
		listings = normalizer.NormalizeAPIResults(items, tx)
	} else {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
			os.Exit(1)
		}
		defer csvWriter.Close()

		scraper := finn.New(cfg, logger)
		bags, err := scraper.Scrape()
		if err != nil {
			logger.Error("Scrape failed: %v", err)
			os.Exit(1)
		}
		if len(bags) == 0 {
			logger.Error("No listings were scraped. Exiting.")
			os.Exit(1)
		}

		if err := csvWriter.WriteRaw(bags); err != nil {
			logger.Error("CSV write failed: %v", err)
		} else {
			logger.Info("Raw listings saved to %s", cfg.CSVOutputPath)
		}

		pool := utils.NewWorkerPool(cfg.MaxConcurrency, 0)
		listings = normalizer.NormalizeAllParallel(bags, tx, pool)
	}

	if len(listings) == 0 {
		logger.Error("All items were discarded during normalization. Exiting.")
		os.Exit(1)
	}

	if err := pgWriter.Write(listings); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("Stored %d listings in PostgreSQL (table: listings)", len(listings))
	}

	dbListings, err := pgWriter.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch listings from DB for the report: %v", err)
		dbListings = listings
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(dbListings))

	fmt.Printf("  Done. %d listings → PostgreSQL (listings table)\n\n", len(listings))

	if cfg.ServeAPI {
		srv := server.New(pgWriter, logger)
		if err := srv.ListenAndServe(cfg.ServeAddr); err != nil {
			logger.Error("API server failed: %v", err)
			os.Exit(1)
		}
	}
}
