package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/prodscan/backend/config"
	httpDelivery "github.com/prodscan/backend/internal/delivery/http"
	"github.com/prodscan/backend/internal/domain"
	"github.com/prodscan/backend/internal/infrastructure/gemini"
	"github.com/prodscan/backend/internal/infrastructure/history"
	"github.com/prodscan/backend/internal/infrastructure/openai"
	"github.com/prodscan/backend/internal/infrastructure/reference"
	"github.com/prodscan/backend/internal/infrastructure/search"
	"github.com/prodscan/backend/internal/usecase"
)

func main() {
	// Pick up secrets from .env during local development
	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debug := cfg.Server.Environment == "development"

	log.Printf("Starting ProdScan Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("History Type: %s", cfg.History.Type)

	// Initialize infrastructure dependencies
	vision := newVisionClient(cfg.Vision, debug)
	log.Printf("Vision API configured: %s %s (key: %s...)", cfg.Vision.Provider, cfg.Vision.Model, keyPrefix(cfg.Vision.APIKey))

	// Interfaces stay nil when a collaborator is disabled so sources can detect it
	var searchClient domain.SearchClient
	var scraper domain.ReferencePriceScraper
	if cfg.Search.Enabled() {
		searchClient = search.NewClient(cfg.Search.APIKey, cfg.Search.EngineID, cfg.Search.BaseURL, cfg.Search.Timeout)
		scraper = reference.NewScraper(cfg.Reference.PriceSelector, cfg.Reference.UserAgent, cfg.Reference.Timeout)
		log.Printf("Web search configured: %s (key: %s...)", cfg.Search.BaseURL, keyPrefix(cfg.Search.APIKey))
	} else {
		log.Printf("WARNING: Web search not configured - prices fall back to estimates and direct marketplace links")
	}

	store, err := history.Open(context.Background(), cfg.History)
	if err != nil {
		log.Fatalf("Failed to open scan history: %v", err)
	}
	var historyRepo domain.HistoryRepository
	if store != nil {
		defer store.Close()
		historyRepo = store
	}

	// Initialize usecase layer
	queries := usecase.NewQueryBuilder(debug)
	matcher := usecase.NewCategoryMatcher(domain.PhoneCatalog, usecase.CategoryConfig{
		EnableFuzzyMatching: true,
		EnableDebugLogging:  debug,
	})

	sources, err := usecase.BuildPriceSources(
		cfg.Pricing,
		cfg.Reference,
		cfg.Search.ResultCount,
		searchClient,
		scraper,
		vision,
		matcher,
		queries,
	)
	if err != nil {
		log.Fatalf("Failed to build price sources: %v", err)
	}
	log.Printf("Price cascade: %v", cfg.Pricing.Order)

	scanService := usecase.NewScanService(
		vision,
		usecase.NewLabelFieldExtractor(),
		usecase.NewUsageService(vision),
		usecase.NewPriceCascade(sources...),
		historyRepo,
		usecase.ScanConfig{MaxImageBytes: cfg.Image.MaxBytes},
	)

	// Create HTTP handler with dependencies
	var historyLister httpDelivery.HistoryLister
	if historyRepo != nil {
		historyLister = scanService
	}
	handler := httpDelivery.NewHandler(scanService, historyLister, cfg.Image)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newVisionClient builds the client for the configured provider
func newVisionClient(cfg config.VisionConfig, debug bool) domain.VisionClient {
	if cfg.Provider == "openai" {
		return openai.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	}

	client := gemini.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	if debug {
		client.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}
	return client
}

// keyPrefix returns enough of a key to recognize it in logs
func keyPrefix(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return "****"
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
