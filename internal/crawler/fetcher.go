package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ivoryscan/internal/observability"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves listing pages and parses them into goquery documents.
// Cache may be nil to fetch live only.
type Fetcher struct {
	client *http.Client
	Cache  *PageCache
}

func NewFetcher(timeout time.Duration, cache *PageCache) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		Cache:  cache,
	}
}

// Fetch returns the parsed document for url, from cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if f.Cache != nil {
		if html, ok := f.Cache.Get(ctx, url); ok {
			return goquery.NewDocumentFromReader(strings.NewReader(html))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "he-IL,he;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	observability.PagesFetched.Inc()

	if f.Cache != nil {
		f.Cache.Set(ctx, url, string(body))
	}

	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}
