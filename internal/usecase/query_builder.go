package usecase

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/prodscan/backend/internal/domain"
)

// maxQueryLength keeps search queries well inside the API's query size limit
const maxQueryLength = 100

var (
	// Characters that carry search operator meaning or break the query string
	searchOperatorPattern = regexp.MustCompile(`["'` + "`" + `<>{}\[\]|^~\\]`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)

	// Lone punctuation left behind after cleanup
	orphanedPunctuationPattern = regexp.MustCompile(`(\s+[,\-;:]+)+\s+`)
	edgePunctuationPattern     = regexp.MustCompile(`^[\s,\-;:]+|[\s,\-;:]+$`)
)

// QueryBuilder turns extracted product fields into web search queries
type QueryBuilder struct {
	enableDebugLogging bool
}

// NewQueryBuilder creates a new query builder
func NewQueryBuilder(enableDebugLogging bool) *QueryBuilder {
	return &QueryBuilder{
		enableDebugLogging: enableDebugLogging,
	}
}

// CleanName normalizes a product name for use inside a search query.
// Strips characters that would be read as search operators, collapses whitespace
// and caps the length at a word boundary.
func (b *QueryBuilder) CleanName(name string) string {
	if name == "" {
		return ""
	}

	original := name

	cleaned := searchOperatorPattern.ReplaceAllString(name, " ")
	cleaned = orphanedPunctuationPattern.ReplaceAllString(cleaned, " ")
	cleaned = edgePunctuationPattern.ReplaceAllString(cleaned, "")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = truncateQuery(cleaned)

	if b.enableDebugLogging {
		log.Printf("[QUERY] Input: %q -> Output: %q", original, cleaned)
	}

	return cleaned
}

// ProductWithBrand prepends the brand to the cleaned name unless the name already
// mentions it (case-insensitive) or the brand is unknown.
func (b *QueryBuilder) ProductWithBrand(name, brand string) string {
	cleaned := b.CleanName(name)
	brand = strings.TrimSpace(brand)

	if brand == "" || brand == domain.FallbackUnknown {
		return cleaned
	}
	if strings.Contains(strings.ToLower(cleaned), strings.ToLower(brand)) {
		return cleaned
	}

	return truncateQuery(brand + " " + cleaned)
}

// MarketplaceQuery restricts a price search to the given marketplace domains,
// e.g. "iPhone 15 price site:shopee.co.th OR site:lazada.co.th".
func (b *QueryBuilder) MarketplaceQuery(name string, domains []string) string {
	query := b.CleanName(name) + " price"
	if len(domains) == 0 {
		return query
	}

	sites := make([]string, 0, len(domains))
	for _, d := range domains {
		sites = append(sites, "site:"+d)
	}
	return query + " " + strings.Join(sites, " OR ")
}

// WebQuery is an unrestricted price search
func (b *QueryBuilder) WebQuery(name string) string {
	return b.CleanName(name) + " price"
}

// ReferenceQuery targets a reference-site page, e.g. "Apple iPhone 15 Pro gsmarena"
func (b *QueryBuilder) ReferenceQuery(brand, model, siteName string) string {
	return fmt.Sprintf("%s %s", b.ProductWithBrand(model, brand), siteName)
}

// EstimateQuestion asks a language model for a local price
func (b *QueryBuilder) EstimateQuestion(name, country, currencyCode string) string {
	return fmt.Sprintf("What is the price of %s in %s, in %s?", b.CleanName(name), country, currencyCode)
}

// truncateQuery caps a query at maxQueryLength, cutting at a word boundary when possible
func truncateQuery(s string) string {
	if len(s) <= maxQueryLength {
		return s
	}

	cut := s[:maxQueryLength]
	// Avoid splitting a multi-byte rune
	for len(cut) > 0 && !utf8.RuneStart(s[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	if lastSpace := strings.LastIndex(cut, " "); lastSpace > maxQueryLength/2 {
		cut = cut[:lastSpace]
	}
	return strings.TrimSpace(cut)
}
