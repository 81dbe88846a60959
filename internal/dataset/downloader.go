// Package dataset builds the labeled phone image dataset used to train recognition models.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/prodscan/backend/internal/domain"
	"github.com/prodscan/backend/internal/retry"
)

// imageExtensions lists the URL path suffixes accepted as images
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// maxImageBytes caps a single downloaded file
const maxImageBytes = 20 << 20

// ValidImageURL reports whether raw is an absolute URL whose path ends in an image extension
func ValidImageURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	// url.Parse already unescapes Path
	ext := strings.ToLower(path.Ext(parsed.Path))
	for _, allowed := range imageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Downloader fetches images to disk with retries
type Downloader struct {
	httpClient  *http.Client
	policy      retry.Policy
	rateLimiter *rate.Limiter
}

// NewDownloader creates a downloader. A nil limiter means downloads are not paced.
func NewDownloader(timeout time.Duration, policy retry.Policy, limiter *rate.Limiter) *Downloader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Downloader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		policy:      policy,
		rateLimiter: limiter,
	}
}

// Download saves imageURL to savePath. On failure no file is left behind.
func (d *Downloader) Download(ctx context.Context, imageURL, savePath string) error {
	if !ValidImageURL(imageURL) {
		log.Printf("[CRAWLER] Skipping invalid image URL: %s", imageURL)
		return fmt.Errorf("%w: invalid image URL %q", domain.ErrDownloadFailed, imageURL)
	}

	attempt := 0
	err := retry.Do(ctx, d.policy, func(ctx context.Context) error {
		attempt++
		err := d.fetch(ctx, imageURL, savePath)
		if err != nil && !retry.IsPermanent(err) {
			log.Printf("[CRAWLER] Attempt %d/%d failed for %s: %v", attempt, d.policy.MaxAttempts, imageURL, err)
		}
		return err
	})
	if err != nil {
		os.Remove(savePath)
		return fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	return nil
}

// fetch performs one download attempt, writing to a temporary file renamed into place on success
func (d *Downloader) fetch(ctx context.Context, imageURL, savePath string) error {
	if d.rateLimiter != nil {
		if err := d.rateLimiter.Wait(ctx); err != nil {
			return retry.Permanent(fmt.Errorf("rate limiter error: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("bad response status: %s", resp.Status)
		// Client errors will not fix themselves, except rate limiting
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return retry.Permanent(err)
		}
		return err
	}

	tmpPath := savePath + ".part"
	file, err := os.Create(tmpPath)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create file: %w", err))
	}

	written, copyErr := io.Copy(file, io.LimitReader(resp.Body, maxImageBytes+1))
	closeErr := file.Close()
	switch {
	case copyErr != nil:
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write image: %w", copyErr)
	case closeErr != nil:
		os.Remove(tmpPath)
		return retry.Permanent(fmt.Errorf("failed to write image: %w", closeErr))
	case written > maxImageBytes:
		os.Remove(tmpPath)
		return retry.Permanent(errors.New("image exceeds size limit"))
	case written == 0:
		os.Remove(tmpPath)
		return retry.Permanent(errors.New("empty response body"))
	}

	if err := os.Rename(tmpPath, savePath); err != nil {
		os.Remove(tmpPath)
		return retry.Permanent(fmt.Errorf("failed to save image: %w", err))
	}
	return nil
}
