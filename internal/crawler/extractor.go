package crawler

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ivoryscan/internal/model"
)

const productSelector = ".entry-wrapper"

// Classes that mark promotional price variants (branch-only pricing). A price
// node with any of these on its ancestor chain is never the canonical price.
var excludedPriceClasses = []string{"eilatprice"}

var pageParamRegex = regexp.MustCompile(`page=(\d+)`)

// nameRule resolves a product name from a listing element. Rules run in
// order, first non-empty result wins.
type nameRule struct {
	label   string
	extract func(s *goquery.Selection) string
}

var nameRules = []nameRule{
	{"catalog title", selectorText(".title_product_catalog")},
	{"main text area", selectorText(".main-text-area")},
	{"title-class div", selectorText("div[class*='title']")},
	{"long text heuristic", heuristicName},
}

func selectorText(selector string) func(s *goquery.Selection) string {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find(selector).First().Text())
	}
}

// heuristicName falls back to the first div whose text is long enough to be
// a product name and is neither a price nor a price label.
func heuristicName(s *goquery.Selection) string {
	name := ""
	s.Find("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		text := strings.TrimSpace(div.Text())
		if len([]rune(text)) > 10 && !strings.HasPrefix(text, "₪") && !strings.Contains(text, "מחיר") {
			name = text
			return false
		}
		return true
	})
	return name
}

// extractProduct parses one listing element. It returns nil when the element
// has no resolvable product identity.
func extractProduct(s *goquery.Selection, baseURL string) *model.Product {
	anchor := s.Find("a[data-product-id]").First()
	if anchor.Length() == 0 {
		return nil
	}

	id, _ := anchor.Attr("data-product-id")
	if id == "" {
		return nil
	}

	productURL, _ := anchor.Attr("href")
	if productURL != "" && !strings.HasPrefix(productURL, "http") {
		if resolved, err := resolveURL(baseURL, productURL); err == nil {
			productURL = resolved
		}
	}

	var name string
	for _, rule := range nameRules {
		if name = rule.extract(s); name != "" {
			break
		}
	}

	return &model.Product{
		ID:         id,
		Name:       name,
		PriceLocal: extractPrice(s),
		Currency:   "ILS",
		URL:        productURL,
		InStock:    s.Find(".in-stock, .available-n-branch-tag.in-stock").Length() > 0,
	}
}

// extractPrice scans all candidate price nodes in document order and accepts
// the first one whose ancestor chain carries no excluded variant class.
func extractPrice(s *goquery.Selection) *int {
	var price *int
	s.Find("span.price").EachWithBreak(func(_ int, node *goquery.Selection) bool {
		for _, class := range excludedPriceClasses {
			if node.Closest("."+class).Length() > 0 {
				return true
			}
		}

		text := strings.TrimSpace(node.Text())
		text = strings.ReplaceAll(text, ",", "")
		text = strings.TrimSpace(strings.ReplaceAll(text, "₪", ""))
		v, err := strconv.Atoi(text)
		if err != nil {
			return true
		}
		price = &v
		return false
	})
	return price
}

// maxPage derives the pagination bound for a listing page: the maximum of
// page-number query params in any link and of numeric link text inside
// recognized pagination containers. A page without markers is a single page.
func maxPage(doc *goquery.Document) int {
	max := 1

	doc.Find("a[href*='page=']").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if m := pageParamRegex.FindStringSubmatch(href); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	})

	doc.Find(".pagination a, .paging a, .pages a").Each(func(_ int, link *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(link.Text())); err == nil && n > max {
			max = n
		}
	})

	return max
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

// pageURL rewrites a category link to point at a specific page number.
func pageURL(categoryURL string, page int) string {
	u, err := url.Parse(categoryURL)
	if err != nil {
		return categoryURL
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
