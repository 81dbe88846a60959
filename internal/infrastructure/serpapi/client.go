package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/prodscan/backend/internal/domain"
)

// ImagePage is one page of google_images results
type ImagePage struct {
	// ImageURLs holds the "original" URL of every result, in order
	ImageURLs []string
	// Next holds the request parameters of the following page, nil on the last page
	Next url.Values
}

// Client handles communication with the SerpAPI search endpoint
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new SerpAPI client that issues at most requestsPerSecond requests
func NewClient(apiKey, baseURL string, requestsPerSecond float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 0.5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// FirstPage returns the parameters of the first page of medium-size image results for query
func (c *Client) FirstPage(query string) url.Values {
	params := url.Values{}
	params.Set("engine", "google_images")
	params.Set("q", query)
	params.Set("ijn", "0")
	params.Set("tbs", "isz:m")
	return params
}

type imagesResponse struct {
	Error         string `json:"error"`
	ImagesResults []struct {
		Original string `json:"original"`
	} `json:"images_results"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"serpapi_pagination"`
}

// SearchImages fetches the page described by params
func (c *Client) SearchImages(ctx context.Context, params url.Values) (*ImagePage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	query := url.Values{}
	for key, vals := range params {
		query[key] = append([]string(nil), vals...)
	}
	query.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = stripURL(err)
		log.Printf("[CRAWLER] SerpAPI request error for %q: %v", params.Get("q"), err)
		return nil, fmt.Errorf("%w: %v", domain.ErrImageSearchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[CRAWLER] SerpAPI error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrImageSearchFailure, resp.StatusCode)
	}

	var imagesResp imagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&imagesResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrImageSearchFailure, err)
	}
	if imagesResp.Error != "" && len(imagesResp.ImagesResults) == 0 {
		// SerpAPI reports "no results" as a 200 with an error message
		log.Printf("[CRAWLER] SerpAPI returned no images for %q: %s", params.Get("q"), imagesResp.Error)
		return &ImagePage{}, nil
	}

	page := &ImagePage{ImageURLs: make([]string, 0, len(imagesResp.ImagesResults))}
	for _, result := range imagesResp.ImagesResults {
		if result.Original != "" {
			page.ImageURLs = append(page.ImageURLs, result.Original)
		}
	}

	if imagesResp.Pagination.Next != "" {
		next, err := nextParams(params, imagesResp.Pagination.Next)
		if err != nil {
			log.Printf("[CRAWLER] Ignoring malformed next page URL %q: %v", imagesResp.Pagination.Next, err)
		} else {
			page.Next = next
		}
	}

	return page, nil
}

// nextParams overlays the query of the next page URL on the current parameters
func nextParams(current url.Values, nextURL string) (url.Values, error) {
	parsed, err := url.Parse(nextURL)
	if err != nil {
		return nil, err
	}

	next := url.Values{}
	for key, vals := range current {
		next[key] = append([]string(nil), vals...)
	}
	for key, vals := range parsed.Query() {
		if key == "api_key" {
			continue
		}
		next[key] = vals
	}
	return next, nil
}

// stripURL drops the request URL from transport errors so the API key never reaches logs or callers
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
