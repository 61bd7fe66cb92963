// Package crawler walks paginated catalog listing pages and extracts
// product records.
package crawler

import (
	"context"
	"log"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ivoryscan/internal/catalog"
	"ivoryscan/internal/model"
	"ivoryscan/internal/observability"
)

// PageFetcher is anything that can turn a URL into a parsed document.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Crawler drives the extractor across all pages of a category, one page at
// a time with a fixed pause between fetches.
type Crawler struct {
	Fetcher PageFetcher
	BaseURL string
	Delay   time.Duration
}

// Crawl collects all unique products of one category in first-seen order.
// A page-1 fetch failure yields an empty, error-flagged result; a later page
// failure skips only that page.
func (c *Crawler) Crawl(ctx context.Context, cat catalog.Category) model.CategoryResult {
	result := model.CategoryResult{
		Description: cat.Description,
		Group:       cat.Group,
		URL:         cat.Link,
		Products:    []model.Product{},
	}

	log.Printf("Scraping %s (%s): %s", cat.Description, cat.Group, cat.Link)

	doc, err := c.Fetcher.Fetch(ctx, cat.Link)
	if err != nil {
		log.Printf("Failed to fetch %s: %v", cat.Link, err)
		result.Error = "Failed to fetch page"
		return result
	}

	// pagination bounds come from page 1 only
	pages := maxPage(doc)
	log.Printf("Found %d page(s)", pages)

	seen := make(map[string]bool)
	products := []model.Product{}

	for page := 1; page <= pages; page++ {
		if page > 1 {
			time.Sleep(c.Delay)
			doc, err = c.Fetcher.Fetch(ctx, pageURL(cat.Link, page))
			if err != nil {
				log.Printf("Page %d: failed to fetch, skipping: %v", page, err)
				continue
			}
		}

		pageNew := 0
		elements := doc.Find(productSelector)
		elements.Each(func(_ int, s *goquery.Selection) {
			p := extractProduct(s, c.BaseURL)
			if p == nil || seen[p.ID] {
				return
			}
			seen[p.ID] = true
			products = append(products, *p)
			pageNew++
		})
		observability.ProductsScraped.Add(float64(pageNew))
		log.Printf("Page %d: %d items, %d new products", page, elements.Length(), pageNew)
	}

	log.Printf("Total: %d unique products", len(products))
	result.SetProducts(products)
	return result
}
