package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prodscan/backend/internal/domain"
)

// 1x1 transparent PNG
const testPNGDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

const fullDescription = "Product Name: iPhone 15\n" +
	"Brand: Apple\n" +
	"Brand Details: American technology company.\n" +
	"Release Date: September 22, 2023\n" +
	"Used for: Calls, messaging and photos."

type scanFixture struct {
	vision  *MockVisionClient
	prices  *MockPriceResolver
	history *MockHistoryRepository
	svc     *ScanService
}

func newScanFixture(description domain.ProductDescription, maxBytes int) *scanFixture {
	f := &scanFixture{
		vision:  &MockVisionClient{description: description},
		prices:  &MockPriceResolver{result: linksResult("marketplace")},
		history: &MockHistoryRepository{},
	}
	f.svc = NewScanService(
		f.vision,
		NewLabelFieldExtractor(),
		NewUsageService(f.vision),
		f.prices,
		f.history,
		ScanConfig{MaxImageBytes: maxBytes},
	)
	return f
}

func TestScan(t *testing.T) {
	ctx := context.Background()

	t.Run("successful scan", func(t *testing.T) {
		f := newScanFixture(fullDescription, 1<<20)

		result, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.ID == "" {
			t.Error("expected a scan ID")
		}
		if result.Stage != domain.StagePriceResolved {
			t.Errorf("Stage = %q, want %q", result.Stage, domain.StagePriceResolved)
		}
		if result.Fields.ProductName != "iPhone 15" || result.Fields.ReleaseDate != "09/22/2023" {
			t.Errorf("Fields = %+v", result.Fields)
		}
		if result.Price.Source != "marketplace" {
			t.Errorf("Price.Source = %q, want marketplace", result.Price.Source)
		}
		if f.vision.lastImage.MIMEType != "image/png" || len(f.vision.lastImage.Data) == 0 {
			t.Errorf("vision got image %q (%d bytes)", f.vision.lastImage.MIMEType, len(f.vision.lastImage.Data))
		}
		if !strings.Contains(f.vision.lastPrompt, "Product Name") {
			t.Errorf("prompt does not ask for labeled lines: %q", f.vision.lastPrompt)
		}
		if f.vision.calls != 0 {
			t.Errorf("usage backfill asked %d times, want 0", f.vision.calls)
		}
		if f.prices.names[0] != "iPhone 15" {
			t.Errorf("price resolved for %q, want iPhone 15", f.prices.names[0])
		}
		if len(f.history.entries) != 1 || f.history.entries[0].ID != result.ID {
			t.Errorf("history entries = %+v, want one entry for %s", f.history.entries, result.ID)
		}
	})

	t.Run("missing usage triggers one backfill", func(t *testing.T) {
		f := newScanFixture("Product Name: Moka Pot\nBrand: Bialetti\n", 1<<20)
		f.vision.answer = "Brewing stovetop espresso."

		result, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Fields.Usage != "Brewing stovetop espresso." {
			t.Errorf("Usage = %q", result.Fields.Usage)
		}
		if f.vision.calls != 1 {
			t.Errorf("Ask called %d times, want 1", f.vision.calls)
		}
	})

	t.Run("vision failure stops the pipeline", func(t *testing.T) {
		f := newScanFixture("", 1<<20)
		f.vision.describeErr = errors.New("connection refused")

		_, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL})
		if !errors.Is(err, domain.ErrVisionUnavailable) {
			t.Errorf("error = %v, want ErrVisionUnavailable", err)
		}
		if f.vision.calls != 0 || f.prices.calls != 0 {
			t.Errorf("downstream calls after failure: ask=%d price=%d", f.vision.calls, f.prices.calls)
		}
		if len(f.history.entries) != 0 {
			t.Errorf("failed scan recorded in history")
		}
	})

	t.Run("unexpected response shape is kept distinct", func(t *testing.T) {
		f := newScanFixture("", 1<<20)
		f.vision.describeErr = domain.ErrUnexpectedResponse

		_, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL})
		if !errors.Is(err, domain.ErrUnexpectedResponse) {
			t.Errorf("error = %v, want ErrUnexpectedResponse", err)
		}
	})

	t.Run("empty description is an unexpected response", func(t *testing.T) {
		f := newScanFixture("   ", 1<<20)

		_, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL})
		if !errors.Is(err, domain.ErrUnexpectedResponse) {
			t.Errorf("error = %v, want ErrUnexpectedResponse", err)
		}
	})

	t.Run("unlabeled description still succeeds with fallbacks", func(t *testing.T) {
		f := newScanFixture("I think this is a coffee mug.", 1<<20)
		f.prices.result = domain.PriceNotAvailable()

		result, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Fields.ProductName != domain.FallbackUnknown {
			t.Errorf("ProductName = %q, want Unknown", result.Fields.ProductName)
		}
	})

	t.Run("invalid image is rejected before recognition", func(t *testing.T) {
		for _, image := range []string{"", "data:image/png;base64,", "not base64 !!"} {
			f := newScanFixture(fullDescription, 1<<20)

			_, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: image})
			if !errors.Is(err, domain.ErrInvalidImage) {
				t.Errorf("Scan(%q) error = %v, want ErrInvalidImage", image, err)
			}
			if f.vision.describeCalls != 0 {
				t.Errorf("vision called for invalid image %q", image)
			}
		}
	})

	t.Run("nil request", func(t *testing.T) {
		f := newScanFixture(fullDescription, 1<<20)
		if _, err := f.svc.Scan(ctx, nil); !errors.Is(err, domain.ErrInvalidImage) {
			t.Errorf("error = %v, want ErrInvalidImage", err)
		}
	})

	t.Run("oversized image is rejected", func(t *testing.T) {
		f := newScanFixture(fullDescription, 8)

		_, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL})
		if !errors.Is(err, domain.ErrInvalidImage) {
			t.Errorf("error = %v, want ErrInvalidImage", err)
		}
		if f.vision.describeCalls != 0 {
			t.Error("vision called for oversized image")
		}
	})

	t.Run("history failure does not fail the scan", func(t *testing.T) {
		f := newScanFixture(fullDescription, 1<<20)
		f.history.appendErr = errors.New("disk full")

		if _, err := f.svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("works without history", func(t *testing.T) {
		vision := &MockVisionClient{description: fullDescription}
		svc := NewScanService(vision, NewLabelFieldExtractor(), NewUsageService(vision),
			&MockPriceResolver{result: domain.PriceNotAvailable()}, nil, ScanConfig{})

		if _, err := svc.Scan(ctx, &domain.ScanRequest{Image: testPNGDataURL}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if _, err := svc.History(ctx, 10); !errors.Is(err, domain.ErrHistoryUnavailable) {
			t.Errorf("History error = %v, want ErrHistoryUnavailable", err)
		}
	})
}
