package http

import (
	"html"
	"net/url"
	"strings"

	"github.com/prodscan/backend/internal/domain"
)

// RenderScanResult renders a scan as the HTML fragment shown under the camera view.
// Every field is escaped; the only markup is ours.
func RenderScanResult(result *domain.ScanResult) string {
	f := result.Fields

	var b strings.Builder
	b.WriteString("<b>Product Name:</b> ")
	b.WriteString(html.EscapeString(f.ProductName))
	b.WriteString("<br><b>Brand:</b> ")
	b.WriteString(html.EscapeString(f.Brand))
	b.WriteString("<br><b>Brand Details:</b> ")
	b.WriteString(html.EscapeString(f.BrandDetails))
	b.WriteString("<br><b>Release Date:</b> ")
	b.WriteString(html.EscapeString(f.ReleaseDate))
	b.WriteString("<br><b>What is it used for?</b> ")
	b.WriteString(html.EscapeString(f.Usage))
	b.WriteString("<br><b>Price Comparison (Shopee & Lazada):</b><br> ")
	b.WriteString(RenderPrice(result.Price))
	return b.String()
}

// RenderPrice renders a price result. Unavailable and failed lookups look the same to the user.
func RenderPrice(price domain.PriceResult) string {
	switch price.Kind {
	case domain.PriceLinks:
		if len(price.Links) == 0 {
			break
		}
		parts := make([]string, 0, len(price.Links))
		for _, link := range price.Links {
			parts = append(parts, renderLink(link))
		}
		return strings.Join(parts, "<br>")
	case domain.PriceEstimate:
		if price.Estimate != "" {
			return html.EscapeString(price.Estimate)
		}
	}
	return html.EscapeString(domain.PriceNotAvailableText)
}

// renderLink renders "<b>title</b>: snippet" followed by an anchor when the URL is http(s)
func renderLink(link domain.PriceLink) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(link.Title))
	b.WriteString("</b>")
	if link.Snippet != "" {
		b.WriteString(": ")
		b.WriteString(html.EscapeString(link.Snippet))
	}

	if safeURL(link.URL) {
		b.WriteString("<br><a href='")
		b.WriteString(html.EscapeString(link.URL))
		b.WriteString("' target='_blank'>View Price</a>")
	}
	return b.String()
}

func safeURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
