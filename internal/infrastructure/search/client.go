package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prodscan/backend/internal/domain"
)

// maxResultsPerRequest is the largest num the Custom Search API accepts
const maxResultsPerRequest = 10

// Client handles communication with the Google Custom Search JSON API
type Client struct {
	httpClient *http.Client
	apiKey     string
	engineID   string
	baseURL    string
}

// NewClient creates a new web search client
func NewClient(apiKey, engineID, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  baseURL,
	}
}

// searchResponse is the subset of the API response we read
type searchResponse struct {
	Items []domain.SearchItem `json:"items"`
}

// Search returns up to num ordered hits for query.
// An empty result set is reported as domain.ErrNoResults.
func (c *Client) Search(ctx context.Context, query string, num int) ([]domain.SearchItem, error) {
	num = max(1, min(num, maxResultsPerRequest))

	params := url.Values{}
	params.Add("q", query)
	params.Add("cx", c.engineID)
	params.Add("num", strconv.Itoa(num))
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = stripURL(err)
		log.Printf("[SEARCH] Request error for %q: %v", query, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[SEARCH] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchFailure, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Printf("[SEARCH] JSON decode error: %v", err)
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrSearchFailure, err)
	}

	if len(searchResp.Items) == 0 {
		log.Printf("[SEARCH] No results for query: %q", query)
		return nil, domain.ErrNoResults
	}

	log.Printf("[SEARCH] Found %d results for query: %q", len(searchResp.Items), query)
	return searchResp.Items, nil
}

// stripURL drops the request URL from transport errors so the API key never reaches logs or callers
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
