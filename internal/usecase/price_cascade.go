package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/prodscan/backend/internal/domain"
)

// PriceQuery identifies the product a price is resolved for
type PriceQuery struct {
	ProductName string
	Brand       string
}

// PriceSource is one step of the price cascade
type PriceSource interface {
	// Name identifies the source in logs and in PriceResult.Source
	Name() string
	// Applicable reports whether the source can be tried for this product at all
	Applicable(query PriceQuery) bool
	// Lookup returns a Usable result, an empty one, or an error
	Lookup(ctx context.Context, query PriceQuery) (domain.PriceResult, error)
}

// PriceCascade tries price sources in order and keeps the first usable answer
type PriceCascade struct {
	sources []PriceSource
}

// NewPriceCascade creates a cascade over sources, tried in the given order
func NewPriceCascade(sources ...PriceSource) *PriceCascade {
	return &PriceCascade{sources: sources}
}

// Sources returns the configured source names in cascade order
func (c *PriceCascade) Sources() []string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

// Resolve returns the first Usable result. No source after the winner is invoked.
// When every source comes back empty the result is domain.PriceNotAvailable(); when
// at least one failed and none produced a clean empty answer it is tagged PriceError.
// Either way it renders as "Price not available.".
func (c *PriceCascade) Resolve(ctx context.Context, productName, brand string) domain.PriceResult {
	name := strings.TrimSpace(productName)
	if name == "" || name == domain.FallbackUnknown || name == domain.FallbackNotAvailable {
		return domain.PriceNotAvailable()
	}

	query := PriceQuery{ProductName: name, Brand: brand}

	var failures []error
	emptyAnswers := 0

	for _, source := range c.sources {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		if !source.Applicable(query) {
			continue
		}

		result, err := source.Lookup(ctx, query)
		if err != nil {
			log.Printf("[PRICE] Source %s failed for %q: %v", source.Name(), name, err)
			failures = append(failures, err)
			continue
		}

		if result.Usable() {
			log.Printf("[PRICE] Source %s answered for %q (%s)", source.Name(), name, result.Kind)
			return result
		}

		emptyAnswers++
	}

	if len(failures) > 0 && emptyAnswers == 0 {
		return domain.PriceFailed("", errors.Join(failures...))
	}

	return domain.PriceNotAvailable()
}
