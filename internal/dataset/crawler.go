package dataset

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/prodscan/backend/internal/domain"
	"github.com/prodscan/backend/internal/infrastructure/serpapi"
)

// ImageSearcher pages through image search results
type ImageSearcher interface {
	FirstPage(query string) url.Values
	SearchImages(ctx context.Context, params url.Values) (*serpapi.ImagePage, error)
}

// ImageDownloader saves one remote image to a local path
type ImageDownloader interface {
	Download(ctx context.Context, imageURL, savePath string) error
}

// PriceResolver resolves a price for a catalog phone
type PriceResolver interface {
	Resolve(ctx context.Context, productName, brand string) domain.PriceResult
}

// CrawlerConfig holds crawl limits
type CrawlerConfig struct {
	DataDir   string
	MaxImages int
	MinImages int
}

// ModelReport summarizes the crawl of one phone model
type ModelReport struct {
	Model      domain.PhoneModel
	Dir        string
	Downloaded int
	Price      *domain.PriceResult
	Err        error
}

// BelowMinimum reports whether fewer images than required were saved
func (r ModelReport) BelowMinimum(min int) bool {
	return r.Downloaded < min
}

// Crawler downloads search images for each phone into its own directory
type Crawler struct {
	search     ImageSearcher
	downloader ImageDownloader
	prices     PriceResolver
	cfg        CrawlerConfig
}

// NewCrawler creates a crawler. prices may be nil to skip price lookups.
func NewCrawler(search ImageSearcher, downloader ImageDownloader, prices PriceResolver, cfg CrawlerConfig) *Crawler {
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 10
	}
	return &Crawler{
		search:     search,
		downloader: downloader,
		prices:     prices,
		cfg:        cfg,
	}
}

// Run crawls every model in order. It stops early only when ctx is done.
func (c *Crawler) Run(ctx context.Context, models []domain.PhoneModel) ([]ModelReport, error) {
	if err := os.MkdirAll(c.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	reports := make([]ModelReport, 0, len(models))
	for _, model := range models {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report := c.crawlModel(ctx, model)
		if report.BelowMinimum(c.cfg.MinImages) {
			log.Printf("[CRAWLER] WARNING: Only %d images for %s (min: %d)", report.Downloaded, model, c.cfg.MinImages)
		} else {
			log.Printf("[CRAWLER] Downloaded %d images for %s", report.Downloaded, model)
		}

		if c.prices != nil && ctx.Err() == nil {
			price := c.prices.Resolve(ctx, model.String(), model.Brand)
			report.Price = &price
			log.Printf("[CRAWLER] Price info for %s: %s", model, price.Summary())
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func (c *Crawler) crawlModel(ctx context.Context, model domain.PhoneModel) ModelReport {
	report := ModelReport{
		Model: model,
		Dir:   filepath.Join(c.cfg.DataDir, model.DirName()),
	}

	if err := os.MkdirAll(report.Dir, 0o755); err != nil {
		report.Err = fmt.Errorf("failed to create model dir: %w", err)
		log.Printf("[CRAWLER] %v", report.Err)
		return report
	}

	params := c.search.FirstPage(model.String())
	for report.Downloaded < c.cfg.MaxImages && params != nil {
		page, err := c.search.SearchImages(ctx, params)
		if err != nil {
			report.Err = err
			log.Printf("[CRAWLER] Error during image search for %s: %v", model, err)
			break
		}
		if len(page.ImageURLs) == 0 {
			log.Printf("[CRAWLER] No more image results found for %s", model)
			break
		}

		for _, imageURL := range page.ImageURLs {
			if report.Downloaded >= c.cfg.MaxImages || ctx.Err() != nil {
				break
			}

			savePath := filepath.Join(report.Dir, ImageFilename(model))
			if err := c.downloader.Download(ctx, imageURL, savePath); err != nil {
				continue
			}
			report.Downloaded++
		}

		if page.Next == nil {
			log.Printf("[CRAWLER] No more pagination for %s", model)
		}
		params = page.Next
	}

	return report
}

// ImageFilename returns a unique file name such as "apple_iphone_15_3f2a...c9.jpg"
func ImageFilename(model domain.PhoneModel) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	name := fmt.Sprintf("%s_%s_%s.jpg", model.Brand, model.Model, id)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ToLower(name)
}
