package domain

import "context"

// VisionClient defines the interface for the vision-language API
type VisionClient interface {
	// DescribeImage sends an instruction prompt and inline image and returns the free-text answer
	DescribeImage(ctx context.Context, image Image, prompt string) (ProductDescription, error)
	// Ask sends a text-only prompt and returns the free-text answer
	Ask(ctx context.Context, prompt string) (string, error)
}

// TextAsker is the text-only subset of VisionClient used by backfill and estimates
type TextAsker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// SearchItem is one ordered web search hit
type SearchItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// SearchClient defines the interface for the web-search API
type SearchClient interface {
	Search(ctx context.Context, query string, num int) ([]SearchItem, error)
}

// ReferencePriceScraper extracts the listed price from a reference spec page.
// Returns ErrPriceNotFound when the page holds no price element or number.
type ReferencePriceScraper interface {
	ScrapePrice(ctx context.Context, pageURL string) (ReferencePrice, error)
}

// FieldExtractor turns a free-text description into structured fields
type FieldExtractor interface {
	Extract(raw ProductDescription) ExtractedFields
}

// HistoryRepository defines the append-only scan log
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
}
