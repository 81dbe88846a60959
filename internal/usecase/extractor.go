package usecase

import (
	"regexp"
	"strings"

	"github.com/prodscan/backend/internal/domain"
)

// labelLine builds a pattern matching "<label>: value" at the start of a line.
// Leading list bullets, quote markers and emphasis are tolerated so that
// "**Brand:** Apple" and "- Brand: Apple" both match.
func labelLine(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t>#*\-]*` + regexp.QuoteMeta(label) + `[ \t]*(.*)$`)
}

var (
	productNameLine  = labelLine("Product Name:")
	brandLine        = labelLine("Brand:")
	brandDetailsLine = labelLine("Brand Details:")
	releaseDateLine  = labelLine("Release Date:")
	usageLine        = labelLine("Used for:")
)

// LabelFieldExtractor recovers product fields from "Label: value" lines.
// Labels are case-sensitive and only the first occurrence of each is used.
type LabelFieldExtractor struct{}

// NewLabelFieldExtractor creates a new labeled-line extractor
func NewLabelFieldExtractor() *LabelFieldExtractor {
	return &LabelFieldExtractor{}
}

// Extract implements domain.FieldExtractor. It never fails; missing labels
// produce the fallback literals and every returned field is non-empty.
func (e *LabelFieldExtractor) Extract(raw domain.ProductDescription) domain.ExtractedFields {
	// The sentinel newline lets a label on the final line match the same way as any other
	text := string(raw) + "\n"

	fields := domain.ExtractedFields{
		ProductName:  extractLabel(text, productNameLine, domain.FallbackUnknown),
		Brand:        extractLabel(text, brandLine, domain.FallbackUnknown),
		BrandDetails: extractLabel(text, brandDetailsLine, domain.FallbackNotAvailable),
		Usage:        extractLabel(text, usageLine, domain.FallbackNotAvailable),
		ReleaseDate:  domain.FallbackNotAvailable,
	}

	if match := releaseDateLine.FindStringSubmatch(text); match != nil {
		raw := NormalizeText(match[1])
		if raw != domain.FallbackNotAvailable {
			fields.ReleaseDateRaw = raw
			fields.ReleaseDate = NormalizeDate(raw)
		}
	}

	return fields
}

// extractLabel returns the normalized value of the first matching line, or fallback
// when the label is absent or its value is blank.
func extractLabel(text string, pattern *regexp.Regexp, fallback string) string {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return fallback
	}

	if strings.TrimSpace(emphasisRegex.ReplaceAllString(match[1], "")) == "" {
		return fallback
	}
	return NormalizeText(match[1])
}
