package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/prodscan/backend/config"
	"github.com/prodscan/backend/internal/domain"
)

// searchHits runs a search and treats "no results" as an empty answer rather than a failure
func searchHits(ctx context.Context, search domain.SearchClient, query string, num int) ([]domain.SearchItem, error) {
	items, err := search.Search(ctx, query, num)
	if errors.Is(err, domain.ErrNoResults) {
		return nil, nil
	}
	return items, err
}

// priceLinks keeps hits whose title mentions "price" or whose snippet carries a currency glyph
func priceLinks(items []domain.SearchItem, glyphs []string) []domain.PriceLink {
	var links []domain.PriceLink
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.Title), "price") && !containsAny(item.Snippet, glyphs) {
			continue
		}
		links = append(links, domain.PriceLink{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
		})
	}
	return links
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// MarketplaceSource searches local marketplace listings
type MarketplaceSource struct {
	search  domain.SearchClient
	queries *QueryBuilder
	domains []string
	glyph   string
	num     int
}

// NewMarketplaceSource creates a marketplace-restricted search source
func NewMarketplaceSource(search domain.SearchClient, queries *QueryBuilder, domains []string, glyph string, num int) *MarketplaceSource {
	return &MarketplaceSource{search: search, queries: queries, domains: domains, glyph: glyph, num: num}
}

func (s *MarketplaceSource) Name() string { return config.SourceMarketplace }

func (s *MarketplaceSource) Applicable(PriceQuery) bool { return s.search != nil }

func (s *MarketplaceSource) Lookup(ctx context.Context, q PriceQuery) (domain.PriceResult, error) {
	items, err := searchHits(ctx, s.search, s.queries.MarketplaceQuery(q.ProductName, s.domains), s.num)
	if err != nil {
		return domain.PriceFailed(s.Name(), err), err
	}
	return domain.PriceFromLinks(s.Name(), priceLinks(items, []string{s.glyph})), nil
}

// WebSource runs an unrestricted price search
type WebSource struct {
	search  domain.SearchClient
	queries *QueryBuilder
	glyphs  []string
	num     int
}

// NewWebSource creates a general web search source
func NewWebSource(search domain.SearchClient, queries *QueryBuilder, glyphs []string, num int) *WebSource {
	return &WebSource{search: search, queries: queries, glyphs: glyphs, num: num}
}

func (s *WebSource) Name() string { return config.SourceWeb }

func (s *WebSource) Applicable(PriceQuery) bool { return s.search != nil }

func (s *WebSource) Lookup(ctx context.Context, q PriceQuery) (domain.PriceResult, error) {
	items, err := searchHits(ctx, s.search, s.queries.WebQuery(q.ProductName), s.num)
	if err != nil {
		return domain.PriceFailed(s.Name(), err), err
	}
	return domain.PriceFromLinks(s.Name(), priceLinks(items, s.glyphs)), nil
}

// ReferenceSource reads the listed price off a reference-site page; phones only
type ReferenceSource struct {
	search         domain.SearchClient
	scraper        domain.ReferencePriceScraper
	matcher        *CategoryMatcher
	queries        *QueryBuilder
	siteName       string
	label          string
	conversionRate float64
	fromCurrency   string
	currencyCode   string
}

// ReferenceSourceConfig holds the reference-site settings.
// ConversionRate converts FromCurrency amounts into CurrencyCode; prices in any other currency are shown unconverted.
type ReferenceSourceConfig struct {
	SiteName       string
	Label          string
	ConversionRate float64
	FromCurrency   string
	CurrencyCode   string
}

// NewReferenceSource creates a reference-site source
func NewReferenceSource(
	search domain.SearchClient,
	scraper domain.ReferencePriceScraper,
	matcher *CategoryMatcher,
	queries *QueryBuilder,
	cfg ReferenceSourceConfig,
) *ReferenceSource {
	return &ReferenceSource{
		search:         search,
		scraper:        scraper,
		matcher:        matcher,
		queries:        queries,
		siteName:       cfg.SiteName,
		label:          cfg.Label,
		conversionRate: cfg.ConversionRate,
		fromCurrency:   strings.ToUpper(cfg.FromCurrency),
		currencyCode:   cfg.CurrencyCode,
	}
}

func (s *ReferenceSource) Name() string { return config.SourceReference }

func (s *ReferenceSource) Applicable(q PriceQuery) bool {
	return s.search != nil && s.scraper != nil && s.matcher.IsPhone(q.ProductName, q.Brand)
}

func (s *ReferenceSource) Lookup(ctx context.Context, q PriceQuery) (domain.PriceResult, error) {
	brand := q.Brand
	if match, ok := s.matcher.Match(q.ProductName, q.Brand); ok {
		brand = match.Phone.Brand
	}

	items, err := searchHits(ctx, s.search, s.queries.ReferenceQuery(brand, q.ProductName, s.siteName), 1)
	if err != nil {
		return domain.PriceFailed(s.Name(), err), err
	}
	if len(items) == 0 || items[0].Link == "" {
		return domain.PriceFromEstimate(s.Name(), ""), nil
	}

	price, err := s.scraper.ScrapePrice(ctx, items[0].Link)
	if errors.Is(err, domain.ErrPriceNotFound) {
		return domain.PriceFromEstimate(s.Name(), ""), nil
	}
	if err != nil {
		return domain.PriceFailed(s.Name(), err), err
	}

	estimate := fmt.Sprintf("%s Price (Approximate): %s", s.label, price)
	if converted, ok := s.convert(price); ok {
		estimate += fmt.Sprintf(" (≈ %s %s)", converted, s.currencyCode)
	}

	return domain.PriceFromEstimate(s.Name(), estimate), nil
}

// convert applies the configured conversion rate when the page priced the product in the rate's source currency
func (s *ReferenceSource) convert(price domain.ReferencePrice) (string, bool) {
	if s.conversionRate <= 0 || price.Currency == "" || price.Currency != s.fromCurrency {
		return "", false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(price.Amount, ",", ""), 64)
	if err != nil {
		return "", false
	}

	return formatThousands(int64(value*s.conversionRate + 0.5)), true
}

// EstimateSource asks the language model for a ballpark local price
type EstimateSource struct {
	asker        domain.TextAsker
	queries      *QueryBuilder
	country      string
	currencyCode string
	amount       *regexp.Regexp
}

// NewEstimateSource creates a language-model estimate source
func NewEstimateSource(asker domain.TextAsker, queries *QueryBuilder, country, currencyCode string) *EstimateSource {
	return &EstimateSource{
		asker:        asker,
		queries:      queries,
		country:      country,
		currencyCode: currencyCode,
		// "about 41,900 THB" -> "41,900"
		amount: regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*` + regexp.QuoteMeta(currencyCode)),
	}
}

func (s *EstimateSource) Name() string { return config.SourceEstimate }

func (s *EstimateSource) Applicable(PriceQuery) bool { return s.asker != nil }

func (s *EstimateSource) Lookup(ctx context.Context, q PriceQuery) (domain.PriceResult, error) {
	answer, err := s.asker.Ask(ctx, s.queries.EstimateQuestion(q.ProductName, s.country, s.currencyCode))
	if err != nil {
		return domain.PriceFailed(s.Name(), err), err
	}

	match := s.amount.FindStringSubmatch(answer)
	if match == nil {
		return domain.PriceFromEstimate(s.Name(), ""), nil
	}

	return domain.PriceFromEstimate(s.Name(), fmt.Sprintf("Approximately %s %s (AI estimate)", match[1], s.currencyCode)), nil
}

// marketplaceSearchURLs maps known marketplaces to their search page
var marketplaceSearchURLs = map[string]string{
	"shopee.co.th": "https://shopee.co.th/search?keyword=%s",
	"lazada.co.th": "https://www.lazada.co.th/catalog/?q=%s",
}

// LinksSource builds marketplace search URLs without calling any API.
// It only stands in when web search is not configured.
type LinksSource struct {
	searchEnabled bool
	queries       *QueryBuilder
	domains       []string
}

// NewLinksSource creates a direct-links source
func NewLinksSource(searchEnabled bool, queries *QueryBuilder, domains []string) *LinksSource {
	return &LinksSource{searchEnabled: searchEnabled, queries: queries, domains: domains}
}

func (s *LinksSource) Name() string { return config.SourceLinks }

func (s *LinksSource) Applicable(PriceQuery) bool { return !s.searchEnabled && len(s.domains) > 0 }

func (s *LinksSource) Lookup(_ context.Context, q PriceQuery) (domain.PriceResult, error) {
	name := s.queries.ProductWithBrand(q.ProductName, q.Brand)
	escaped := url.QueryEscape(name)

	links := make([]domain.PriceLink, 0, len(s.domains))
	for _, d := range s.domains {
		pattern, ok := marketplaceSearchURLs[d]
		if !ok {
			pattern = "https://" + d + "/search?q=%s"
		}
		links = append(links, domain.PriceLink{
			Title:   "Search " + d,
			Snippet: "Listings for " + name,
			URL:     fmt.Sprintf(pattern, escaped),
		})
	}

	return domain.PriceFromLinks(s.Name(), links), nil
}

// formatThousands renders 41900 as "41,900"
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + formatThousands(-n)
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

// BuildPriceSources creates the sources named in order. Sources whose client is nil
// are still created and simply report themselves not applicable.
func BuildPriceSources(
	pricing config.PricingConfig,
	reference config.ReferenceConfig,
	resultCount int,
	search domain.SearchClient,
	scraper domain.ReferencePriceScraper,
	asker domain.TextAsker,
	matcher *CategoryMatcher,
	queries *QueryBuilder,
) ([]PriceSource, error) {
	sources := make([]PriceSource, 0, len(pricing.Order))

	for _, name := range pricing.Order {
		switch name {
		case config.SourceMarketplace:
			sources = append(sources, NewMarketplaceSource(search, queries, pricing.MarketplaceDomains, pricing.LocalGlyph, resultCount))
		case config.SourceReference:
			sources = append(sources, NewReferenceSource(search, scraper, matcher, queries, ReferenceSourceConfig{
				SiteName:       reference.SiteName,
				Label:          reference.Label,
				ConversionRate: pricing.ConversionRate,
				FromCurrency:   pricing.ConversionCurrency,
				CurrencyCode:   pricing.CurrencyCode,
			}))
		case config.SourceWeb:
			sources = append(sources, NewWebSource(search, queries, pricing.WebGlyphs, resultCount))
		case config.SourceEstimate:
			sources = append(sources, NewEstimateSource(asker, queries, pricing.Country, pricing.CurrencyCode))
		case config.SourceLinks:
			sources = append(sources, NewLinksSource(search != nil, queries, pricing.MarketplaceDomains))
		default:
			return nil, fmt.Errorf("unknown price source: %s", name)
		}
	}

	return sources, nil
}
