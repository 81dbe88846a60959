package domain

import "errors"

var (
	// ErrInvalidImage is returned when the scan request carries no usable image
	ErrInvalidImage = errors.New("invalid image payload")

	// ErrVisionUnavailable is returned when the vision API is unreachable or answers non-2xx
	ErrVisionUnavailable = errors.New("vision API request failed")

	// ErrUnexpectedResponse is returned when the vision API answer has an unexpected shape
	ErrUnexpectedResponse = errors.New("unexpected vision API response")

	// ErrSearchFailure is returned when the web search API request fails
	ErrSearchFailure = errors.New("web search request failed")

	// ErrNoResults is returned when a search yields no items
	ErrNoResults = errors.New("no search results")

	// ErrPageFetch is returned when a reference page cannot be fetched
	ErrPageFetch = errors.New("reference page fetch failed")

	// ErrPriceNotFound is returned when a page or answer holds no recognizable price
	ErrPriceNotFound = errors.New("price not found")

	// ErrHistoryUnavailable is returned when scan history is disabled or unreachable
	ErrHistoryUnavailable = errors.New("scan history unavailable")

	// ErrImageSearchFailure is returned when the image search API request fails
	ErrImageSearchFailure = errors.New("image search request failed")

	// ErrDownloadFailed is returned when an image download fails permanently
	ErrDownloadFailed = errors.New("image download failed")
)
