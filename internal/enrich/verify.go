package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ivoryscan/internal/model"
	"ivoryscan/internal/pricing"
)

// verifyEntry carries a second-pass US RRP estimate for a batch member.
type verifyEntry struct {
	Index        int  `json:"index"`
	ReferenceUSD *int `json:"us_rrp_usd"`
}

// Verify re-estimates the US reference price for every product of one
// category and recomputes USD prices and ratios for the whole category
// afterwards, updated or not. Only us_rrp_usd may change; a returned value
// equal to the current one counts as no update.
func (b *Batcher) Verify(ctx context.Context, cat model.CategoryResult, rate float64) model.CategoryResult {
	products := cat.Products
	log.Printf("%s: %d products", cat.Description, len(products))

	total := (len(products) + b.VerifyBatchSize - 1) / b.VerifyBatchSize
	for i := 0; i < len(products); i += b.VerifyBatchSize {
		end := i + b.VerifyBatchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[i:end]

		updates, err := b.verifyBatch(ctx, batch, cat.Description)
		if err != nil {
			log.Printf("  Batch %d/%d: skipped: %v", i/b.VerifyBatchSize+1, total, err)
		} else {
			log.Printf("  Batch %d/%d: %d prices updated", i/b.VerifyBatchSize+1, total, updates)
		}

		if end < len(products) {
			time.Sleep(b.Delay)
		}
	}

	for i := range products {
		products[i].PriceUSD, products[i].PriceRatio = pricing.Price(products[i].PriceLocal, products[i].ReferenceUSD, rate)
	}
	cat.SetProducts(products)
	return cat
}

func (b *Batcher) verifyBatch(ctx context.Context, batch []model.Product, categoryName string) (int, error) {
	raw, err := b.Oracle.Estimate(ctx, verifyPrompt(batch, categoryName))
	if err != nil {
		return 0, fmt.Errorf("oracle call failed: %w", err)
	}

	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = fenceOpenRegex.ReplaceAllString(text, "")
		text = fenceCloseRegex.ReplaceAllString(text, "")
	}

	var entries []verifyEntry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return 0, fmt.Errorf("bad oracle response: %w", err)
	}

	updates := 0
	for _, e := range entries {
		if e.Index < 1 || e.Index > len(batch) || e.ReferenceUSD == nil {
			continue
		}
		p := &batch[e.Index-1]
		if p.ReferenceUSD != nil && *p.ReferenceUSD == *e.ReferenceUSD {
			continue
		}
		p.ReferenceUSD = e.ReferenceUSD
		updates++
	}
	return updates, nil
}

func verifyPrompt(batch []model.Product, categoryName string) string {
	var list strings.Builder
	for i, p := range batch {
		fmt.Fprintf(&list, "%d. %s - %s (Part: %s)\n", i+1, orDefault(p.Manufacturer, "?"), orDefault(p.DescriptionEN, p.Name), orDefault(p.PartNumber, "N/A"))
	}

	return fmt.Sprintf(`You are a computer hardware pricing expert. For each %s product below, provide the CURRENT US retail price (MSRP/RRP) in USD.

Products:
%s
IMPORTANT GUIDELINES:
- Use current US retail prices from major retailers (Amazon, Newegg, Best Buy)
- For DDR5 RAM: 16GB kits typically $50-80, 32GB kits $80-150, 64GB kits $150-300
- For DDR4 RAM: 16GB kits typically $30-50, 32GB kits $50-90
- For NVMe SSDs: 500GB $40-60, 1TB $60-100, 2TB $100-180
- If exact product not available in US, estimate based on similar specs
- Return INTEGER prices only

Return a JSON array with objects containing:
- "index": product number (1, 2, 3...)
- "us_rrp_usd": integer US retail price in USD

Example: [{"index": 1, "us_rrp_usd": 85}, {"index": 2, "us_rrp_usd": 120}]

Return ONLY the JSON array, no markdown.
`, categoryName, list.String())
}

func orDefault(s *string, d string) string {
	if s == nil || *s == "" {
		return d
	}
	return *s
}
