package model

// Product is one catalog listing. Enrichment and derived fields are nil
// until the corresponding stage fills them.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceLocal *int   `json:"price"`
	Currency   string `json:"currency"`
	URL        string `json:"url"`
	InStock    bool   `json:"in_stock"`

	Manufacturer  *string `json:"manufacturer,omitempty"`
	PartNumber    *string `json:"part_number,omitempty"`
	DescriptionEN *string `json:"description_en,omitempty"`
	ReferenceUSD  *int    `json:"us_rrp_usd,omitempty"`

	PriceUSD   *float64 `json:"price_usd"`
	PriceRatio *float64 `json:"price_ratio"`
}

// CategoryResult is the outcome of crawling one category. ProductCount is
// kept equal to len(Products) on every mutation.
type CategoryResult struct {
	Description  string    `json:"description"`
	Group        string    `json:"group"`
	URL          string    `json:"url"`
	ProductCount int       `json:"product_count"`
	Products     []Product `json:"products"`
	Error        string    `json:"error,omitempty"`
}

// SetProducts replaces the product list and recomputes the count.
func (c *CategoryResult) SetProducts(ps []Product) {
	c.Products = ps
	c.ProductCount = len(ps)
}

// Snapshot is one finished pipeline run, grouped by category group then
// category key. TotalProducts equals the sum of all per-category counts.
type Snapshot struct {
	CaptureDate   string                               `json:"capture_date"`
	Source        string                               `json:"source"`
	ExchangeRate  float64                              `json:"exchange_rate_ils_to_usd"`
	TotalProducts int                                  `json:"total_products"`
	Categories    map[string]map[string]CategoryResult `json:"categories"`
}
