package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prodscan/backend/internal/domain"
)

// RecognitionPrompt is the instruction sent with every scanned image
const RecognitionPrompt = "Identify the product and provide details including: Product Name, Brand, " +
	"Brand Details, Release Date, and explain what this product is used for in one short sentence.\n" +
	"Answer with one labeled line each, exactly in this format:\n" +
	"Product Name: <name>\n" +
	"Brand: <brand>\n" +
	"Brand Details: <one sentence about the brand>\n" +
	"Release Date: <Month D, YYYY>\n" +
	"Used for: <one short sentence>"

// PriceResolver resolves a price for a recognized product
type PriceResolver interface {
	Resolve(ctx context.Context, productName, brand string) domain.PriceResult
}

// ScanConfig holds configuration for the scan service
type ScanConfig struct {
	MaxImageBytes int
	Prompt        string
}

// ScanService runs one scan through recognition, extraction, backfill and pricing
type ScanService struct {
	vision        domain.VisionClient
	extractor     domain.FieldExtractor
	usage         *UsageService
	prices        PriceResolver
	history       domain.HistoryRepository
	maxImageBytes int
	prompt        string
	now           func() time.Time
}

// NewScanService creates a new scan service. history may be nil.
func NewScanService(
	vision domain.VisionClient,
	extractor domain.FieldExtractor,
	usage *UsageService,
	prices PriceResolver,
	history domain.HistoryRepository,
	config ScanConfig,
) *ScanService {
	prompt := config.Prompt
	if prompt == "" {
		prompt = RecognitionPrompt
	}

	return &ScanService{
		vision:        vision,
		extractor:     extractor,
		usage:         usage,
		prices:        prices,
		history:       history,
		maxImageBytes: config.MaxImageBytes,
		prompt:        prompt,
		now:           time.Now,
	}
}

// Scan recognizes the product in the request image and resolves its details.
// Only image and vision failures are returned as errors; everything after a
// successful recognition degrades to fallback values instead.
func (s *ScanService) Scan(ctx context.Context, request *domain.ScanRequest) (*domain.ScanResult, error) {
	if request == nil {
		return nil, fmt.Errorf("%w: missing request", domain.ErrInvalidImage)
	}

	result := &domain.ScanResult{
		ID:        uuid.NewString(),
		ScannedAt: s.now().UTC(),
		Stage:     domain.StageReceivedImage,
	}

	image, err := domain.ParseImageDataURL(request.Image)
	if err != nil {
		return nil, err
	}
	if s.maxImageBytes > 0 && len(image.Data) > s.maxImageBytes {
		return nil, fmt.Errorf("%w: image is %d bytes, limit is %d", domain.ErrInvalidImage, len(image.Data), s.maxImageBytes)
	}

	log.Printf("[SCAN] %s: received %s image (%d bytes)", result.ID, image.MIMEType, len(image.Data))

	description, err := s.vision.DescribeImage(ctx, image, s.prompt)
	if err != nil {
		log.Printf("[SCAN] %s: recognition failed: %v", result.ID, err)
		if errors.Is(err, domain.ErrUnexpectedResponse) || errors.Is(err, domain.ErrVisionUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrVisionUnavailable, err)
	}
	if strings.TrimSpace(string(description)) == "" {
		return nil, fmt.Errorf("%w: empty description", domain.ErrUnexpectedResponse)
	}
	result.Stage = domain.StageRecognized

	fields := s.extractor.Extract(description)
	result.Stage = domain.StageFieldsExtracted

	fields.Usage = s.usage.EnsureUsage(ctx, fields.ProductName, fields.Usage)
	result.Stage = domain.StageUsageResolved

	result.Price = s.prices.Resolve(ctx, fields.ProductName, fields.Brand)
	result.Fields = fields
	result.Stage = domain.StagePriceResolved

	log.Printf("[SCAN] %s: %q (%s), price: %s via %q",
		result.ID, fields.ProductName, fields.Brand, result.Price.Kind, result.Price.Source)

	s.record(ctx, result)

	return result, nil
}

// record appends the scan to the history store; failures never fail the scan
func (s *ScanService) record(ctx context.Context, result *domain.ScanResult) {
	if s.history == nil {
		return
	}

	if err := s.history.Append(ctx, domain.NewHistoryEntry(result)); err != nil {
		log.Printf("[HISTORY] %s: append failed: %v", result.ID, err)
	}
}

// History returns the most recent scans, newest first
func (s *ScanService) History(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	return s.history.Recent(ctx, limit)
}
