package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/prodscan/backend/internal/domain"
)

// UsageService fills in a missing "used for" sentence with a follow-up question
type UsageService struct {
	asker domain.TextAsker
}

// NewUsageService creates a new usage backfill service
func NewUsageService(asker domain.TextAsker) *UsageService {
	return &UsageService{asker: asker}
}

// EnsureUsage returns usage unchanged unless it is the "Not available." fallback,
// in which case the vision API is asked exactly once. Failures keep the fallback.
func (s *UsageService) EnsureUsage(ctx context.Context, productName, usage string) string {
	if usage != domain.FallbackNotAvailable || s.asker == nil {
		return usage
	}

	prompt := fmt.Sprintf("In one short sentence, explain what %s is used for.", productName)
	answer, err := s.asker.Ask(ctx, prompt)
	if err != nil {
		log.Printf("[SCAN] Usage backfill failed for %q: %v", productName, err)
		return domain.FallbackNotAvailable
	}

	return NormalizeText(answer)
}
