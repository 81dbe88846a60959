package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prodscan/backend/internal/domain"
)

func linksResult(source string) domain.PriceResult {
	return domain.PriceFromLinks(source, []domain.PriceLink{{Title: "iPhone 15 price", Snippet: "฿32,900", URL: "https://shopee.co.th/x"}})
}

func TestPriceCascadeResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("first usable source wins and later sources are not called", func(t *testing.T) {
		first := &MockPriceSource{name: "first", applicable: true, result: domain.PriceFromLinks("first", nil)}
		second := &MockPriceSource{name: "second", applicable: true, result: linksResult("second")}
		third := &MockPriceSource{name: "third", applicable: true, result: linksResult("third")}

		got := NewPriceCascade(first, second, third).Resolve(ctx, "iPhone 15", "Apple")

		if got.Source != "second" {
			t.Errorf("Source = %q, want %q", got.Source, "second")
		}
		if first.lookupCalls != 1 || second.lookupCalls != 1 {
			t.Errorf("calls = %d/%d, want 1/1", first.lookupCalls, second.lookupCalls)
		}
		if third.lookupCalls != 0 {
			t.Errorf("third source called %d times after a usable answer, want 0", third.lookupCalls)
		}
	})

	t.Run("inapplicable sources are skipped", func(t *testing.T) {
		skipped := &MockPriceSource{name: "reference", applicable: false, result: linksResult("reference")}
		used := &MockPriceSource{name: "web", applicable: true, result: linksResult("web")}

		got := NewPriceCascade(skipped, used).Resolve(ctx, "Coffee Mug", "IKEA")

		if skipped.lookupCalls != 0 {
			t.Errorf("inapplicable source called %d times, want 0", skipped.lookupCalls)
		}
		if got.Source != "web" {
			t.Errorf("Source = %q, want %q", got.Source, "web")
		}
	})

	t.Run("errors fall through to the next source", func(t *testing.T) {
		failing := &MockPriceSource{name: "marketplace", applicable: true, err: domain.ErrSearchFailure}
		estimate := &MockPriceSource{name: "estimate", applicable: true, result: domain.PriceFromEstimate("estimate", "Approximately 32,900 THB (AI estimate)")}

		got := NewPriceCascade(failing, estimate).Resolve(ctx, "iPhone 15", "Apple")

		if got.Kind != domain.PriceEstimate {
			t.Errorf("Kind = %v, want estimate", got.Kind)
		}
	})

	t.Run("all empty yields not available", func(t *testing.T) {
		a := &MockPriceSource{name: "a", applicable: true, result: domain.PriceFromLinks("a", nil)}
		b := &MockPriceSource{name: "b", applicable: true, result: domain.PriceFromEstimate("b", "")}

		got := NewPriceCascade(a, b).Resolve(ctx, "Coffee Mug", "IKEA")

		if !reflect.DeepEqual(got, domain.PriceNotAvailable()) {
			t.Errorf("Resolve = %+v, want %+v", got, domain.PriceNotAvailable())
		}
		if got.Summary() != "Price not available." {
			t.Errorf("Summary = %q, want %q", got.Summary(), "Price not available.")
		}
	})

	t.Run("all failing yields error-tagged not available", func(t *testing.T) {
		a := &MockPriceSource{name: "a", applicable: true, err: domain.ErrSearchFailure}
		b := &MockPriceSource{name: "b", applicable: true, err: errors.New("boom")}

		got := NewPriceCascade(a, b).Resolve(ctx, "Coffee Mug", "IKEA")

		if got.Kind != domain.PriceError {
			t.Errorf("Kind = %v, want error", got.Kind)
		}
		if got.Usable() {
			t.Error("error result must not be usable")
		}
		if got.Summary() != "Price not available." {
			t.Errorf("Summary = %q, want %q", got.Summary(), "Price not available.")
		}
	})

	t.Run("unknown product calls no source", func(t *testing.T) {
		src := &MockPriceSource{name: "a", applicable: true, result: linksResult("a")}

		for _, name := range []string{"Unknown", "", "  ", "Not available."} {
			got := NewPriceCascade(src).Resolve(ctx, name, "Apple")
			if !reflect.DeepEqual(got, domain.PriceNotAvailable()) {
				t.Errorf("Resolve(%q) = %+v, want not available", name, got)
			}
		}
		if src.lookupCalls != 0 {
			t.Errorf("source called %d times, want 0", src.lookupCalls)
		}
	})

	t.Run("cancelled context stops the cascade", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		src := &MockPriceSource{name: "a", applicable: true, result: linksResult("a")}

		got := NewPriceCascade(src).Resolve(cancelled, "iPhone 15", "Apple")

		if src.lookupCalls != 0 {
			t.Errorf("source called %d times, want 0", src.lookupCalls)
		}
		if got.Usable() {
			t.Errorf("Resolve = %+v, want unusable result", got)
		}
	})

	t.Run("no sources", func(t *testing.T) {
		if got := NewPriceCascade().Resolve(ctx, "iPhone 15", "Apple"); !reflect.DeepEqual(got, domain.PriceNotAvailable()) {
			t.Errorf("Resolve = %+v, want not available", got)
		}
	})
}

func TestPriceCascadeSources(t *testing.T) {
	c := NewPriceCascade(
		&MockPriceSource{name: "marketplace"},
		&MockPriceSource{name: "web"},
	)

	got := c.Sources()
	if len(got) != 2 || got[0] != "marketplace" || got[1] != "web" {
		t.Errorf("Sources() = %v, want [marketplace web]", got)
	}
}
