package usecase

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/prodscan/backend/internal/domain"
)

var (
	// Markdown emphasis markers the vision API likes to wrap labels and values in
	emphasisRegex = regexp.MustCompile(`\*+`)

	// Runs of line breaks collapse into a single space
	lineBreakRegex = regexp.MustCompile(`[\r\n]+`)
)

// releaseDateLayouts are the long-form date layouts recognized in vision output
var releaseDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
}

// releaseDateOutputLayout is MM/DD/YYYY
const releaseDateOutputLayout = "01/02/2006"

// NormalizeText strips emphasis markers, collapses line breaks into spaces and trims.
// The result is NFC-normalized and never empty: blank input becomes "Not available.".
// NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(text string) string {
	cleaned := emphasisRegex.ReplaceAllString(text, "")
	cleaned = lineBreakRegex.ReplaceAllString(cleaned, " ")
	cleaned = norm.NFC.String(strings.TrimSpace(cleaned))

	if cleaned == "" {
		return domain.FallbackNotAvailable
	}
	return cleaned
}

// NormalizeDate reformats a long-form date such as "January 5, 2024" as "01/05/2024".
// Text that does not parse is returned normalized but otherwise unchanged.
func NormalizeDate(raw string) string {
	cleaned := NormalizeText(raw)

	for _, layout := range releaseDateLayouts {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			return parsed.Format(releaseDateOutputLayout)
		}
	}

	return cleaned
}
