package reference

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/prodscan/backend/internal/domain"
)

// maxPageBytes caps how much of a reference page is parsed
const maxPageBytes = 4 << 20

// priceRegex matches the first number-like run with an optional currency on either side,
// e.g. "1,299.00 EUR" in "About 1,299.00 EUR" or "$ 999.99" in "$ 999.99 / € 1,029.00"
var priceRegex = regexp.MustCompile(`(?i)(?:(€|\$|£|₹|\bEUR|\bUSD|\bGBP|\bINR)\s*)?(\d[\d,\.]*)(?:\s*(€|\$|£|₹|EUR\b|USD\b|GBP\b|INR\b))?`)

var currencySymbols = map[string]string{
	"€": "EUR",
	"$": "USD",
	"£": "GBP",
	"₹": "INR",
}

// Scraper reads the listed price off a reference-site product page
type Scraper struct {
	client   *http.Client
	headers  http.Header
	selector string
}

// NewScraper creates a reference page scraper. selector picks the price element,
// e.g. `td[data-spec="price"]`.
func NewScraper(selector, userAgent string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	headers := http.Header{
		"User-Agent":      []string{userAgent},
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Language": []string{"en-US,en;q=0.5"},
	}

	return &Scraper{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		headers:  headers,
		selector: selector,
	}
}

// ScrapePrice implements domain.ReferencePriceScraper
func (s *Scraper) ScrapePrice(ctx context.Context, pageURL string) (domain.ReferencePrice, error) {
	body, err := s.visit(ctx, pageURL)
	if err != nil {
		log.Printf("[REFERENCE] Fetch failed for %s: %v", pageURL, err)
		return domain.ReferencePrice{}, fmt.Errorf("%w: %v", domain.ErrPageFetch, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxPageBytes))
	if err != nil {
		return domain.ReferencePrice{}, fmt.Errorf("%w: failed to parse page: %v", domain.ErrPageFetch, err)
	}

	cell := doc.Find(s.selector).First()
	if cell.Length() == 0 {
		log.Printf("[REFERENCE] No price element %q on %s", s.selector, pageURL)
		return domain.ReferencePrice{}, domain.ErrPriceNotFound
	}

	price, ok := ExtractPrice(cell.Text())
	if !ok {
		return domain.ReferencePrice{}, domain.ErrPriceNotFound
	}

	log.Printf("[REFERENCE] Found price %s on %s", price, pageURL)
	return price, nil
}

// visit GETs pageURL with browser-like headers and returns the body of a 200 response
func (s *Scraper) visit(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, vals := range s.headers {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad response status: %s", resp.Status)
	}
	return resp.Body, nil
}

// ExtractPrice returns the first number in text without trailing separators, together with
// the currency written next to it. ok is false when text holds no number.
func ExtractPrice(text string) (price domain.ReferencePrice, ok bool) {
	match := priceRegex.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return domain.ReferencePrice{}, false
	}

	amount := strings.TrimRight(match[2], ",.")
	if amount == "" {
		return domain.ReferencePrice{}, false
	}

	currency := match[1]
	if currency == "" {
		currency = match[3]
	}
	if code, found := currencySymbols[currency]; found {
		currency = code
	}

	return domain.ReferencePrice{Amount: amount, Currency: strings.ToUpper(currency)}, true
}
