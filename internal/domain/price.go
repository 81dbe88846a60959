package domain

import "strings"

// PriceNotAvailableText is the terminal display text when no source produced a price
const PriceNotAvailableText = "Price not available."

// PriceKind tags a PriceResult
type PriceKind int

const (
	PriceUnavailable PriceKind = iota
	PriceLinks
	PriceEstimate
	PriceError
)

func (k PriceKind) String() string {
	switch k {
	case PriceLinks:
		return "links"
	case PriceEstimate:
		return "estimate"
	case PriceError:
		return "error"
	default:
		return "unavailable"
	}
}

// MarshalText renders the kind as its name in JSON output
func (k PriceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PriceLink is one marketplace or web search hit that carries price information
type PriceLink struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// PriceResult is the outcome of price resolution for one product.
// Exactly one of Links, Estimate or Reason is meaningful depending on Kind.
type PriceResult struct {
	Kind     PriceKind   `json:"kind"`
	Source   string      `json:"source,omitempty"`
	Links    []PriceLink `json:"links,omitempty"`
	Estimate string      `json:"estimate,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// PriceNotAvailable returns the terminal result of an exhausted cascade
func PriceNotAvailable() PriceResult {
	return PriceResult{Kind: PriceUnavailable, Reason: PriceNotAvailableText}
}

// PriceFailed returns an error-tagged result for a source that failed
func PriceFailed(source string, err error) PriceResult {
	return PriceResult{Kind: PriceError, Source: source, Reason: err.Error()}
}

// PriceFromLinks returns a links result, or an unavailable one when links is empty
func PriceFromLinks(source string, links []PriceLink) PriceResult {
	if len(links) == 0 {
		return PriceResult{Kind: PriceUnavailable, Source: source, Reason: PriceNotAvailableText}
	}
	return PriceResult{Kind: PriceLinks, Source: source, Links: links}
}

// PriceFromEstimate returns an inline estimate result
func PriceFromEstimate(source, estimate string) PriceResult {
	if strings.TrimSpace(estimate) == "" {
		return PriceResult{Kind: PriceUnavailable, Source: source, Reason: PriceNotAvailableText}
	}
	return PriceResult{Kind: PriceEstimate, Source: source, Estimate: estimate}
}

// Usable reports whether the result carries price information worth showing
func (p PriceResult) Usable() bool {
	switch p.Kind {
	case PriceLinks:
		return len(p.Links) > 0
	case PriceEstimate:
		return p.Estimate != ""
	default:
		return false
	}
}

// Summary returns a plain-text one-liner for logs and the history table
func (p PriceResult) Summary() string {
	switch {
	case p.Kind == PriceEstimate && p.Estimate != "":
		return p.Estimate
	case p.Kind == PriceLinks && len(p.Links) > 0:
		return p.Links[0].Title + ": " + p.Links[0].Snippet
	default:
		return PriceNotAvailableText
	}
}

// ReferencePrice is a price read off a reference page.
// Currency is an ISO 4217 code, or "" when the page text names none.
type ReferencePrice struct {
	Amount   string
	Currency string
}

func (p ReferencePrice) String() string {
	if p.Currency == "" {
		return p.Amount
	}
	return p.Amount + " " + p.Currency
}
