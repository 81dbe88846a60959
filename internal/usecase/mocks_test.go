package usecase

import (
	"context"
	"sync"

	"github.com/prodscan/backend/internal/domain"
)

// MockSearchClient is a mock implementation of domain.SearchClient
type MockSearchClient struct {
	items   []domain.SearchItem
	err     error
	calls   int
	queries []string
	nums    []int
}

func (m *MockSearchClient) Search(ctx context.Context, query string, num int) ([]domain.SearchItem, error) {
	m.calls++
	m.queries = append(m.queries, query)
	m.nums = append(m.nums, num)
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

// MockAsker is a mock implementation of domain.TextAsker
type MockAsker struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (m *MockAsker) Ask(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

// MockVisionClient is a mock implementation of domain.VisionClient
type MockVisionClient struct {
	MockAsker
	description   domain.ProductDescription
	describeErr   error
	describeCalls int
	lastImage     domain.Image
	lastPrompt    string
}

func (m *MockVisionClient) DescribeImage(ctx context.Context, image domain.Image, prompt string) (domain.ProductDescription, error) {
	m.describeCalls++
	m.lastImage = image
	m.lastPrompt = prompt
	if m.describeErr != nil {
		return "", m.describeErr
	}
	return m.description, nil
}

// MockScraper is a mock implementation of domain.ReferencePriceScraper
type MockScraper struct {
	price domain.ReferencePrice
	err   error
	calls int
	urls  []string
}

func (m *MockScraper) ScrapePrice(ctx context.Context, pageURL string) (domain.ReferencePrice, error) {
	m.calls++
	m.urls = append(m.urls, pageURL)
	if m.err != nil {
		return domain.ReferencePrice{}, m.err
	}
	return m.price, nil
}

// MockPriceSource is a mock PriceSource that counts invocations
type MockPriceSource struct {
	name        string
	applicable  bool
	result      domain.PriceResult
	err         error
	lookupCalls int
}

func (m *MockPriceSource) Name() string { return m.name }

func (m *MockPriceSource) Applicable(PriceQuery) bool { return m.applicable }

func (m *MockPriceSource) Lookup(ctx context.Context, q PriceQuery) (domain.PriceResult, error) {
	m.lookupCalls++
	return m.result, m.err
}

// MockPriceResolver is a mock PriceResolver
type MockPriceResolver struct {
	result domain.PriceResult
	calls  int
	names  []string
}

func (m *MockPriceResolver) Resolve(ctx context.Context, productName, brand string) domain.PriceResult {
	m.calls++
	m.names = append(m.names, productName)
	return m.result
}

// MockHistoryRepository is a mock implementation of domain.HistoryRepository
type MockHistoryRepository struct {
	mu        sync.Mutex
	entries   []domain.HistoryEntry
	appendErr error
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockHistoryRepository) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}
