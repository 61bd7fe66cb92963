// Package enrich asks the estimation oracle for manufacturer, part number
// and US reference pricing, in fixed-size sequential batches.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"ivoryscan/internal/model"
	"ivoryscan/internal/observability"
)

var (
	fenceOpenRegex  = regexp.MustCompile("^```(?:json)?\n?")
	fenceCloseRegex = regexp.MustCompile("\n?```$")
)

// estimateEntry is one element of the oracle's JSON-array answer, matched to
// a batch member by its 1-based positional index.
type estimateEntry struct {
	Index         int     `json:"index"`
	Manufacturer  *string `json:"manufacturer"`
	PartNumber    *string `json:"part_number"`
	DescriptionEN *string `json:"description_en"`
	ReferenceUSD  *int    `json:"us_rrp_usd"`
}

// BatchResult reports what happened to one oracle batch.
type BatchResult struct {
	Applied int
	Skipped string // failure reason, empty when the batch was applied
}

// Batcher runs oracle rounds over a product set. Batches run strictly one at
// a time with a fixed pause between calls; the oracle is a shared,
// rate-limited resource.
type Batcher struct {
	Oracle          Oracle
	Delay           time.Duration
	EnrichBatchSize int
	VerifyBatchSize int
}

// Enrich fills manufacturer, part number, English description and US RRP for
// every product the oracle answers for. A failed batch leaves its products
// unchanged and never aborts the rest.
func (b *Batcher) Enrich(ctx context.Context, products []model.Product, categoryHint string) []model.Product {
	if b.Oracle == nil || len(products) == 0 {
		return products
	}

	total := (len(products) + b.EnrichBatchSize - 1) / b.EnrichBatchSize
	for i := 0; i < len(products); i += b.EnrichBatchSize {
		end := i + b.EnrichBatchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[i:end]

		log.Printf("  Batch %d/%d...", i/b.EnrichBatchSize+1, total)
		res := b.enrichBatch(ctx, batch, categoryHint)
		if res.Skipped != "" {
			observability.OracleBatches.WithLabelValues("skipped").Inc()
			log.Printf("  Warning: batch skipped: %s", res.Skipped)
		} else {
			observability.OracleBatches.WithLabelValues("applied").Inc()
		}

		if end < len(products) {
			time.Sleep(b.Delay)
		}
	}
	return products
}

func (b *Batcher) enrichBatch(ctx context.Context, batch []model.Product, categoryHint string) BatchResult {
	prompt := enrichPrompt(batch, categoryHint)

	raw, err := b.Oracle.Estimate(ctx, prompt)
	if err != nil {
		return BatchResult{Skipped: fmt.Sprintf("oracle call failed: %v", err)}
	}

	entries, err := decodeEstimates(raw)
	if err != nil {
		return BatchResult{Skipped: fmt.Sprintf("bad oracle response: %v", err)}
	}

	applied := 0
	for _, e := range entries {
		// positional, 1-based; anything out of range is ignored
		if e.Index < 1 || e.Index > len(batch) {
			continue
		}
		p := &batch[e.Index-1]
		p.Manufacturer = e.Manufacturer
		p.PartNumber = e.PartNumber
		p.DescriptionEN = e.DescriptionEN
		p.ReferenceUSD = e.ReferenceUSD
		applied++
	}
	return BatchResult{Applied: applied}
}

// decodeEstimates parses the oracle's answer, stripping an enclosing
// markdown code fence when present.
func decodeEstimates(raw string) ([]estimateEntry, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = fenceOpenRegex.ReplaceAllString(text, "")
		text = fenceCloseRegex.ReplaceAllString(text, "")
	}

	var entries []estimateEntry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func enrichPrompt(batch []model.Product, categoryHint string) string {
	var list strings.Builder
	for i, p := range batch {
		fmt.Fprintf(&list, "%d. %s\n", i+1, p.Name)
	}

	return fmt.Sprintf(`Analyze these %s products from an Israeli retailer and extract information.

Products:
%s
For EACH product, provide a JSON array with objects containing:
- "index": the product number (1, 2, 3...)
- "manufacturer": the brand/manufacturer name (e.g., "Samsung", "Kingston", "ASUS")
- "part_number": the product SKU/model number if identifiable (e.g., "MZ-V9P2T0BW", "SA400S37/960G")
- "description_en": a brief English description of the product
- "us_rrp_usd": estimated US retail price in USD (integer, your best estimate based on current market prices). If unknown, use null.

IMPORTANT:
- Return ONLY valid JSON array, no markdown formatting
- Use null for unknown values
- For US RRP, estimate based on typical US retail prices for this exact product or very similar products

Example response format:
[{"index": 1, "manufacturer": "Samsung", "part_number": "990-PRO-2TB", "description_en": "Samsung 990 Pro 2TB NVMe SSD", "us_rrp_usd": 180}]
`, categoryHint, list.String())
}
