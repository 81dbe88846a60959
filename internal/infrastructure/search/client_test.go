package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prodscan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("key", "cx", "https://www.googleapis.com/customsearch/v1", 0)

	assert.Equal(t, "key", client.apiKey)
	assert.Equal(t, "cx", client.engineID)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "iPhone 15 price site:shopee.co.th OR site:lazada.co.th", q.Get("q"))
		assert.Equal(t, "engine-id", q.Get("cx"))
		assert.Equal(t, "api-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, q.Get("key"))
		assert.Equal(t, "5", q.Get("num"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"kind": "customsearch#search",
			"items": [
				{"title": "iPhone 15 Price", "snippet": "฿32,900", "link": "https://shopee.co.th/a", "displayLink": "shopee.co.th"},
				{"title": "iPhone 15 128GB", "snippet": "Free shipping", "link": "https://www.lazada.co.th/b"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("api-key", "engine-id", server.URL, time.Second)
	items, err := client.Search(context.Background(), "iPhone 15 price site:shopee.co.th OR site:lazada.co.th", 5)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.SearchItem{Title: "iPhone 15 Price", Snippet: "฿32,900", Link: "https://shopee.co.th/a"}, items[0])
	assert.Equal(t, "https://www.lazada.co.th/b", items[1].Link)
}

func TestSearch_ClampsNum(t *testing.T) {
	tests := []struct {
		num  int
		want string
	}{
		{0, "1"},
		{1, "1"},
		{25, "10"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.want, r.URL.Query().Get("num"))
				w.Write([]byte(`{"items":[{"title":"t","snippet":"s","link":"l"}]}`))
			}))
			defer server.Close()

			client := NewClient("k", "cx", server.URL, time.Second)
			_, err := client.Search(context.Background(), "q", tt.num)
			require.NoError(t, err)
		})
	}
}

func TestSearch_NoItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The API omits "items" entirely when nothing matches
		w.Write([]byte(`{"kind":"customsearch#search","searchInformation":{"totalResults":"0"}}`))
	}))
	defer server.Close()

	client := NewClient("k", "cx", server.URL, time.Second)
	_, err := client.Search(context.Background(), "nothing", 5)

	assert.ErrorIs(t, err, domain.ErrNoResults)
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"quota exceeded", http.StatusTooManyRequests, `{"error":{"code":429}}`},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403}}`},
		{"malformed json", http.StatusOK, `{"items":[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("k", "cx", server.URL, time.Second)
			_, err := client.Search(context.Background(), "q", 5)

			assert.ErrorIs(t, err, domain.ErrSearchFailure)
		})
	}
}

func TestSearch_TransportErrorOmitsAPIKey(t *testing.T) {
	client := NewClient("SECRET-SEARCH-KEY", "cx", "http://127.0.0.1:1/customsearch/v1", time.Second)
	_, err := client.Search(context.Background(), "q", 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSearchFailure)
	assert.NotContains(t, err.Error(), "SECRET-SEARCH-KEY")
}
