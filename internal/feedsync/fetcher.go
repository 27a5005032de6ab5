package feedsync

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Fetcher retrieves and parses one external feed.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) ([]Entry, error)
}

// HTTPFetcher pulls iCalendar feeds over HTTP with a bounded timeout
// per source, so one slow channel never stalls reconciliation of the
// others.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src Source) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request for %s failed: %w", src.Name, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", src.Name, ErrFeedUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: status %d: %w", src.Name, resp.StatusCode, ErrFeedUnavailable)
	}

	entries, err := ParseICal(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s failed: %w", src.Name, err)
	}
	return entries, nil
}
