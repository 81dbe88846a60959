package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscan/backend/internal/domain"
)

func TestFirstPage(t *testing.T) {
	client := NewClient("key", "https://serpapi.com/search.json", 1, 0)
	params := client.FirstPage("Apple iPhone 15")

	assert.Equal(t, "google_images", params.Get("engine"))
	assert.Equal(t, "Apple iPhone 15", params.Get("q"))
	assert.Equal(t, "0", params.Get("ijn"))
	assert.Equal(t, "isz:m", params.Get("tbs"))
	assert.Empty(t, params.Get("api_key"))
}

func TestSearchImages_Success(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("api_key"))
		assert.Equal(t, "google_images", q.Get("engine"))
		assert.Equal(t, "Google Pixel 8 Pro", q.Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"images_results": [
				{"position": 1, "original": "https://cdn.example.com/pixel-1.jpg"},
				{"position": 2, "thumbnail": "https://cdn.example.com/thumb.jpg"},
				{"position": 3, "original": "https://cdn.example.com/pixel-3.png"}
			],
			"serpapi_pagination": {
				"current": 0,
				"next": "` + server.URL + `?engine=google_images&ijn=1&q=Google+Pixel+8+Pro"
			}
		}`))
	}))
	defer server.Close()

	client := NewClient("secret", server.URL, 100, time.Second)
	page, err := client.SearchImages(context.Background(), client.FirstPage("Google Pixel 8 Pro"))

	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/pixel-1.jpg", "https://cdn.example.com/pixel-3.png"}, page.ImageURLs)
	require.NotNil(t, page.Next)
	assert.Equal(t, "1", page.Next.Get("ijn"))
	assert.Equal(t, "isz:m", page.Next.Get("tbs"))
	assert.Empty(t, page.Next.Get("api_key"))
}

func TestSearchImages_LastPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"images_results":[{"original":"https://cdn.example.com/a.jpg"}],"serpapi_pagination":{"current":3}}`))
	}))
	defer server.Close()

	client := NewClient("k", server.URL, 100, time.Second)
	page, err := client.SearchImages(context.Background(), client.FirstPage("q"))

	require.NoError(t, err)
	assert.Len(t, page.ImageURLs, 1)
	assert.Nil(t, page.Next)
}

func TestSearchImages_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Google hasn't returned any results for this query."}`))
	}))
	defer server.Close()

	client := NewClient("k", server.URL, 100, time.Second)
	page, err := client.SearchImages(context.Background(), client.FirstPage("zzz"))

	require.NoError(t, err)
	assert.Empty(t, page.ImageURLs)
	assert.Nil(t, page.Next)
}

func TestSearchImages_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"Invalid API key."}`},
		{"server error", http.StatusInternalServerError, ``},
		{"malformed json", http.StatusOK, `{"images_results":[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("k", server.URL, 100, time.Second)
			_, err := client.SearchImages(context.Background(), client.FirstPage("q"))

			assert.ErrorIs(t, err, domain.ErrImageSearchFailure)
		})
	}
}

func TestSearchImages_RateLimiterHonoursContext(t *testing.T) {
	client := NewClient("k", "http://127.0.0.1:0", 0.001, time.Second)
	// Drain the single burst token
	client.rateLimiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.SearchImages(ctx, client.FirstPage("q"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrImageSearchFailure)
}

func TestSearchImages_TransportErrorOmitsAPIKey(t *testing.T) {
	client := NewClient("SECRET-SERPAPI-KEY", "http://127.0.0.1:1/search.json", 100, time.Second)
	_, err := client.SearchImages(context.Background(), client.FirstPage("q"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrImageSearchFailure)
	assert.NotContains(t, err.Error(), "SECRET-SERPAPI-KEY")
}
