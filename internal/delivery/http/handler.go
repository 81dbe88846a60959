package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prodscan/backend/config"
	"github.com/prodscan/backend/internal/domain"
)

// Messages shown to the user when a scan cannot produce a result
const (
	RecognitionFailedMessage = "❌ Error: Could not get a response from the vision API. Try again."
	ExtractionFailedMessage  = "❌ Error: Could not extract product details. Try again."
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Scanner runs the scan pipeline
type Scanner interface {
	Scan(ctx context.Context, request *domain.ScanRequest) (*domain.ScanResult, error)
}

// HistoryLister lists recent scans
type HistoryLister interface {
	History(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scanner Scanner
	history HistoryLister
	image   config.ImageConfig
}

// NewHandler creates a new HTTP handler. history may be nil when scan history is disabled.
func NewHandler(scanner Scanner, history HistoryLister, image config.ImageConfig) *Handler {
	return &Handler{
		scanner: scanner,
		history: history,
		image:   image,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "prodscan-backend",
		"version": "1.0.0",
	})
}

// Index serves the capture page
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"TargetWidth":  h.image.TargetWidth,
		"TargetHeight": h.image.TargetHeight,
	})
}

// Scan handles product scan requests
func (h *Handler) Scan(c *gin.Context) {
	if h.scanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scan service not configured",
		})
		return
	}

	var req domain.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Image too large",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: image is required",
		})
		return
	}

	result, err := h.scanner.Scan(c.Request.Context(), &req)
	if err != nil {
		h.handleScanError(c, err)
		return
	}

	message := RenderScanResult(result)
	result.Stage = domain.StageRendered
	log.Printf("[SCAN] %s rendered (price: %s via %q)", result.ID, result.Price.Kind, result.Price.Source)

	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

// handleScanError maps scan errors to HTTP responses
func (h *Handler) handleScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, domain.ErrUnexpectedResponse):
		// Upstream detail stays in the log; the client only gets the sentinel text
		log.Printf("[SCAN] Extraction failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"message": ExtractionFailedMessage,
			"error":   domain.ErrUnexpectedResponse.Error(),
		})
	case errors.Is(err, domain.ErrVisionUnavailable):
		log.Printf("[SCAN] Recognition failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"message": RecognitionFailedMessage,
			"error":   domain.ErrVisionUnavailable.Error(),
		})
	default:
		log.Printf("[SCAN] Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": RecognitionFailedMessage,
			"error":   "Internal server error",
		})
	}
}

// ListHistory returns the most recent scans, newest first
func (h *Handler) ListHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Scan history is not enabled",
		})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.history.History(c.Request.Context(), limit)
	if err != nil {
		log.Printf("[HISTORY] List failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrHistoryUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"error": "Failed to load scan history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scans": entries,
		"count": len(entries),
	})
}
