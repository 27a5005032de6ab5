package feedsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/calendar", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5 * time.Second)
	entries, err := fetcher.Fetch(context.Background(), Source{Name: "airbnb", URL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHTTPFetcherUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5 * time.Second)
	_, err := fetcher.Fetch(context.Background(), Source{Name: "airbnb", URL: srv.URL})
	assert.ErrorIs(t, err, ErrFeedUnavailable)
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	fetcher := NewHTTPFetcher(time.Second)
	_, err := fetcher.Fetch(context.Background(), Source{Name: "airbnb", URL: "http://127.0.0.1:1/calendar.ics"})
	assert.ErrorIs(t, err, ErrFeedUnavailable)
}
