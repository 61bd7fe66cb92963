package crawler

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func firstEntry(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	return docFromHTML(t, html).Find(productSelector).First()
}

func TestExtractProductBasic(t *testing.T) {
	html := `<div class="entry-wrapper">
		<a data-product-id="p100" href="/product/100">link</a>
		<div class="title_product_catalog">Samsung 990 Pro 2TB</div>
		<span class="price">1,299 ₪</span>
		<div class="in-stock"></div>
	</div>`

	p := extractProduct(firstEntry(t, html), "https://www.ivory.co.il/")
	if p == nil {
		t.Fatal("expected a product")
	}
	if p.ID != "p100" {
		t.Errorf("id = %q", p.ID)
	}
	if p.Name != "Samsung 990 Pro 2TB" {
		t.Errorf("name = %q", p.Name)
	}
	if p.PriceLocal == nil || *p.PriceLocal != 1299 {
		t.Errorf("price = %v", p.PriceLocal)
	}
	if p.URL != "https://www.ivory.co.il/product/100" {
		t.Errorf("url = %q", p.URL)
	}
	if !p.InStock {
		t.Error("expected in stock")
	}
	if p.Currency != "ILS" {
		t.Errorf("currency = %q", p.Currency)
	}
}

func TestExtractProductNameRuleOrder(t *testing.T) {
	// both selectors present, the first rule must win
	html := `<div class="entry-wrapper">
		<a data-product-id="p1" href="/p/1">x</a>
		<div class="main-text-area">second choice</div>
		<div class="title_product_catalog">first choice</div>
	</div>`

	p := extractProduct(firstEntry(t, html), "")
	if p.Name != "first choice" {
		t.Errorf("name = %q, want first matching rule to win", p.Name)
	}
}

func TestExtractProductNameHeuristicFallback(t *testing.T) {
	html := `<div class="entry-wrapper">
		<a data-product-id="p1" href="/p/1">x</a>
		<div>short</div>
		<div>₪ 1,299 special offer today</div>
		<div>מחיר מיוחד לחברי מועדון</div>
		<div>Kingston Fury Beast 32GB DDR5</div>
	</div>`

	p := extractProduct(firstEntry(t, html), "")
	if p.Name != "Kingston Fury Beast 32GB DDR5" {
		t.Errorf("name = %q", p.Name)
	}
}

func TestExtractProductMissingIDDiscarded(t *testing.T) {
	html := `<div class="entry-wrapper">
		<div class="title_product_catalog">No anchor here</div>
		<span class="price">500</span>
	</div>`

	if p := extractProduct(firstEntry(t, html), ""); p != nil {
		t.Fatalf("expected nil, got %+v", p)
	}
}

func TestExtractPriceSkipsExcludedVariant(t *testing.T) {
	// the branch-only price appears first in document order and must lose
	html := `<div class="entry-wrapper">
		<a data-product-id="p1" href="/p/1">x</a>
		<div class="eilatprice"><span class="price">1,111</span></div>
		<span class="price">1,299</span>
	</div>`

	p := extractProduct(firstEntry(t, html), "")
	if p.PriceLocal == nil || *p.PriceLocal != 1299 {
		t.Errorf("price = %v, want 1299", p.PriceLocal)
	}
}

func TestExtractPriceOnlyExcludedVariant(t *testing.T) {
	html := `<div class="entry-wrapper">
		<a data-product-id="p1" href="/p/1">x</a>
		<div class="eilatprice"><span class="price">1,111</span></div>
	</div>`

	p := extractProduct(firstEntry(t, html), "")
	if p.PriceLocal != nil {
		t.Errorf("price = %v, want nil", *p.PriceLocal)
	}
}

func TestExtractPriceNonNumericThenNumeric(t *testing.T) {
	html := `<div class="entry-wrapper">
		<a data-product-id="p1" href="/p/1">x</a>
		<span class="price">call us</span>
		<span class="price">750</span>
	</div>`

	p := extractProduct(firstEntry(t, html), "")
	if p.PriceLocal == nil || *p.PriceLocal != 750 {
		t.Errorf("price = %v, want 750", p.PriceLocal)
	}
}

func TestMaxPageFromHrefParams(t *testing.T) {
	html := `<html><body>
		<a href="/catalog?cat=1&page=2">2</a>
		<a href="/catalog?cat=1&page=7">7</a>
		<a href="/catalog?cat=1&page=3">3</a>
	</body></html>`

	if got := maxPage(docFromHTML(t, html)); got != 7 {
		t.Errorf("maxPage = %d, want 7", got)
	}
}

func TestMaxPageFromPaginationText(t *testing.T) {
	html := `<html><body>
		<div class="pagination">
			<a href="#">1</a><a href="#">2</a><a href="#">9</a><a href="#">next</a>
		</div>
	</body></html>`

	if got := maxPage(docFromHTML(t, html)); got != 9 {
		t.Errorf("maxPage = %d, want 9", got)
	}
}

func TestMaxPageDefaultsToOne(t *testing.T) {
	if got := maxPage(docFromHTML(t, "<html><body><p>no pages</p></body></html>")); got != 1 {
		t.Errorf("maxPage = %d, want 1", got)
	}
}

func TestPageURL(t *testing.T) {
	got := pageURL("https://www.ivory.co.il/catalog.php?act=cat&id=2590", 3)
	if !strings.Contains(got, "page=3") || !strings.Contains(got, "id=2590") {
		t.Errorf("pageURL = %q", got)
	}
}
