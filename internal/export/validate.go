package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// ValidationError reports a structural defect in an export file, naming the
// missing field. This is the only failure class that halts a run.
type ValidationError struct {
	Field string
	Where string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("export missing required field %q in %s", e.Field, e.Where)
}

// Summary is the reconciliation count set reported after validation.
type Summary struct {
	TotalProducts int
	Enriched      int
	WithRatio     int
}

// Validate checks the structural contract of an export file: the top-level
// fields and per-category / per-product required fields the reporting and
// charting consumers parse. It works on the raw JSON rather than the typed
// model so absent fields are not masked by zero values.
func Validate(path string) (Summary, error) {
	var sum Summary

	log.Printf("Validating JSON: %s", path)
	b, err := os.ReadFile(path)
	if err != nil {
		return sum, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return sum, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	for _, field := range []string{"capture_date", "source", "categories"} {
		if _, ok := doc[field]; !ok {
			return sum, &ValidationError{Field: field, Where: "top level"}
		}
	}

	var groups map[string]map[string]map[string]json.RawMessage
	if err := json.Unmarshal(doc["categories"], &groups); err != nil {
		return sum, fmt.Errorf("failed to decode categories: %w", err)
	}

	for groupName, cats := range groups {
		log.Printf("%s:", groupName)
		for catKey, cat := range cats {
			for _, field := range []string{"description", "url", "products"} {
				if _, ok := cat[field]; !ok {
					return sum, &ValidationError{Field: field, Where: "category " + catKey}
				}
			}

			var products []map[string]json.RawMessage
			if err := json.Unmarshal(cat["products"], &products); err != nil {
				return sum, fmt.Errorf("failed to decode products of %s: %w", catKey, err)
			}

			for _, p := range products {
				for _, field := range []string{"id", "name", "url"} {
					if _, ok := p[field]; !ok {
						return sum, &ValidationError{Field: field, Where: "product in " + catKey}
					}
				}
				if raw, ok := p["manufacturer"]; ok && string(raw) != "null" && string(raw) != `""` {
					sum.Enriched++
				}
				if raw, ok := p["price_ratio"]; ok && string(raw) != "null" {
					sum.WithRatio++
				}
			}

			sum.TotalProducts += len(products)
			log.Printf("  %s: %d products", catKey, len(products))
		}
	}

	log.Printf("Total products: %d", sum.TotalProducts)
	log.Printf("Products with enrichment: %d", sum.Enriched)
	log.Printf("Products with price ratio: %d", sum.WithRatio)
	log.Println("JSON validation passed")
	return sum, nil
}
