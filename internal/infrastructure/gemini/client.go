package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prodscan/backend/internal/domain"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// Client handles communication with the Gemini generateContent API
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	debug      bool
}

// NewClient creates a new Gemini API client
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

// SetDebug enables logging of raw answers
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// DescribeImage implements domain.VisionClient
func (c *Client) DescribeImage(ctx context.Context, image domain.Image, prompt string) (domain.ProductDescription, error) {
	log.Printf("[GEMINI] DescribeImage called with %s image (%d bytes)", image.MIMEType, len(image.Data))

	text, err := c.generate(ctx, newImageRequest(prompt, image))
	if err != nil {
		return "", err
	}

	return domain.ProductDescription(text), nil
}

// Ask implements domain.TextAsker
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, newTextRequest(prompt))
}

// generate posts one request and returns the first candidate's text.
// There is no retry: a failed recognition is reported to the user right away.
func (c *Client) generate(ctx context.Context, request generateContentRequest) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ProdScan/1.0")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = stripURL(err)
		log.Printf("[GEMINI] Request error: %v", err)
		return "", fmt.Errorf("%w: %v", domain.ErrVisionUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxResponseBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrVisionUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[GEMINI] API error - Status: %d, Body: %s", resp.StatusCode, truncate(string(body), 300))
		return "", fmt.Errorf("%w: status %d", domain.ErrVisionUnavailable, resp.StatusCode)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Printf("[GEMINI] JSON decode error: %v", err)
		return "", fmt.Errorf("%w: %v", domain.ErrUnexpectedResponse, err)
	}

	text, err := firstCandidateText(&parsed)
	if err != nil {
		log.Printf("[GEMINI] %v", err)
		return "", err
	}

	if c.debug {
		log.Printf("[GEMINI] Answer: %s", truncate(text, 500))
	}

	return text, nil
}

// stripURL drops the request URL from transport errors so it never reaches logs or callers
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// readLimitedBody reads at most limit bytes of body
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
