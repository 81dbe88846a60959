package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/prodscan/backend/config"
	"github.com/prodscan/backend/internal/dataset"
	"github.com/prodscan/backend/internal/domain"
	"github.com/prodscan/backend/internal/infrastructure/reference"
	"github.com/prodscan/backend/internal/infrastructure/search"
	"github.com/prodscan/backend/internal/infrastructure/serpapi"
	"github.com/prodscan/backend/internal/retry"
	"github.com/prodscan/backend/internal/usecase"
)

func main() {
	brand := flag.String("brand", "", "only crawl phones of this brand (case-insensitive)")
	dataDir := flag.String("out", "", "output directory (overrides dataset.data_dir)")
	flag.Parse()

	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	cfg, err := config.LoadCrawler()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dataDir != "" {
		cfg.Dataset.DataDir = *dataDir
	}

	models := filterByBrand(domain.PhoneCatalog, *brand)
	if len(models) == 0 {
		log.Fatalf("No catalog phones match brand %q", *brand)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds := cfg.Dataset
	searcher := serpapi.NewClient(ds.SerpAPIKey, ds.SerpAPIBaseURL, ds.RequestsPerSecond, 0)

	policy := retry.DefaultPolicy()
	if ds.MaxRetries > 0 {
		policy.MaxAttempts = ds.MaxRetries
	}
	if ds.RetryBaseDelay > 0 {
		policy.BaseDelay = ds.RetryBaseDelay
	}
	// Image hosts are many and varied; keep downloads polite but faster than the search API
	downloader := dataset.NewDownloader(ds.DownloadTimeout, policy, rate.NewLimiter(rate.Limit(4), 4))

	crawler := dataset.NewCrawler(searcher, downloader, newPriceResolver(cfg), dataset.CrawlerConfig{
		DataDir:   ds.DataDir,
		MaxImages: ds.MaxImagesPerModel,
		MinImages: ds.MinImagesPerModel,
	})

	log.Printf("[CRAWLER] Crawling %d phone models into %s", len(models), ds.DataDir)
	reports, err := crawler.Run(ctx, models)
	if err != nil {
		log.Printf("[CRAWLER] Stopped early: %v", err)
	}

	short := 0
	for _, report := range reports {
		if report.BelowMinimum(ds.MinImagesPerModel) {
			short++
		}
	}
	log.Printf("[CRAWLER] Done: %d models crawled, %d below the minimum of %d images", len(reports), short, ds.MinImagesPerModel)
}

// newPriceResolver builds the marketplace then reference lookup logged per phone,
// or nil when price lookups are off or search is not configured
func newPriceResolver(cfg *config.Config) dataset.PriceResolver {
	if !cfg.Dataset.LookupPrices {
		return nil
	}
	if !cfg.Search.Enabled() {
		log.Printf("[CRAWLER] Web search not configured - skipping price lookups")
		return nil
	}

	searchClient := search.NewClient(cfg.Search.APIKey, cfg.Search.EngineID, cfg.Search.BaseURL, cfg.Search.Timeout)
	scraper := reference.NewScraper(cfg.Reference.PriceSelector, cfg.Reference.UserAgent, cfg.Reference.Timeout)
	queries := usecase.NewQueryBuilder(false)
	matcher := usecase.NewCategoryMatcher(domain.PhoneCatalog, usecase.CategoryConfig{EnableFuzzyMatching: true})

	pricing := cfg.Pricing
	pricing.Order = []string{config.SourceMarketplace, config.SourceReference}

	sources, err := usecase.BuildPriceSources(pricing, cfg.Reference, cfg.Search.ResultCount, searchClient, scraper, nil, matcher, queries)
	if err != nil {
		log.Fatalf("Failed to build price sources: %v", err)
	}
	return usecase.NewPriceCascade(sources...)
}

// filterByBrand returns the catalog entries of brand, or all of them when brand is empty
func filterByBrand(catalog []domain.PhoneModel, brand string) []domain.PhoneModel {
	if brand == "" {
		return catalog
	}

	var models []domain.PhoneModel
	for _, phone := range catalog {
		if strings.EqualFold(phone.Brand, brand) {
			models = append(models, phone)
		}
	}
	return models
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
