package domain

import "time"

// Fallback literals substituted when a field cannot be recovered from the vision output.
const (
	FallbackUnknown      = "Unknown"
	FallbackNotAvailable = "Not available."
)

// ProductDescription is the raw free-text answer returned by the vision API for one scan.
// It is untrusted and unstructured.
type ProductDescription string

// ExtractedFields represents the structured product information recovered from a description.
// Every field is always non-empty: absence is represented by a fallback literal.
type ExtractedFields struct {
	ProductName    string `json:"productName"`
	Brand          string `json:"brand"`
	BrandDetails   string `json:"brandDetails"`
	ReleaseDate    string `json:"releaseDate"`
	ReleaseDateRaw string `json:"releaseDateRaw,omitempty"`
	Usage          string `json:"usage"`
}

// ScanStage is the step a scan reached in the recognition pipeline
type ScanStage string

const (
	StageReceivedImage   ScanStage = "received_image"
	StageRecognized      ScanStage = "recognized"
	StageFieldsExtracted ScanStage = "fields_extracted"
	StageUsageResolved   ScanStage = "usage_resolved"
	StagePriceResolved   ScanStage = "price_resolved"
	StageRendered        ScanStage = "rendered"
	StageFailed          ScanStage = "failed"
)

// ScanRequest represents the body of a scan request
type ScanRequest struct {
	Image string `json:"image" binding:"required"`
}

// ScanResult is the write-once composite produced by a successful scan
type ScanResult struct {
	ID        string          `json:"id"`
	ScannedAt time.Time       `json:"scannedAt"`
	Fields    ExtractedFields `json:"fields"`
	Price     PriceResult     `json:"price"`
	Stage     ScanStage       `json:"stage"`
}

// HistoryEntry is one row of the scan log
type HistoryEntry struct {
	ID           string    `json:"id" db:"id"`
	ScannedAt    time.Time `json:"scannedAt" db:"scanned_at"`
	ProductName  string    `json:"productName" db:"product_name"`
	Brand        string    `json:"brand" db:"brand"`
	BrandDetails string    `json:"brandDetails" db:"brand_details"`
	ReleaseDate  string    `json:"releaseDate" db:"release_date"`
	Usage        string    `json:"usage" db:"usage"`
	PriceSource  string    `json:"priceSource" db:"price_source"`
	PriceKind    string    `json:"priceKind" db:"price_kind"`
	PriceText    string    `json:"priceText" db:"price_text"`
}

// NewHistoryEntry flattens a scan result into a history row
func NewHistoryEntry(result *ScanResult) HistoryEntry {
	return HistoryEntry{
		ID:           result.ID,
		ScannedAt:    result.ScannedAt,
		ProductName:  result.Fields.ProductName,
		Brand:        result.Fields.Brand,
		BrandDetails: result.Fields.BrandDetails,
		ReleaseDate:  result.Fields.ReleaseDate,
		Usage:        result.Fields.Usage,
		PriceSource:  result.Price.Source,
		PriceKind:    result.Price.Kind.String(),
		PriceText:    result.Price.Summary(),
	}
}
