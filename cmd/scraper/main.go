package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"ivoryscan/internal/catalog"
	"ivoryscan/internal/config"
	"ivoryscan/internal/crawler"
	"ivoryscan/internal/db"
	"ivoryscan/internal/enrich"
	"ivoryscan/internal/exchange"
	"ivoryscan/internal/export"
	"ivoryscan/internal/model"
	"ivoryscan/internal/observability"
	"ivoryscan/internal/pricing"
	"ivoryscan/internal/repository"
)

// go run cmd/scraper/main.go -cat=ram-ddr5,ssd-nvme
// go run cmd/scraper/main.go -validate-only=exports/ivory_products_latest.json
func main() {
	catsArg := flag.String("cat", "", "comma-separated category keys to scrape (empty = all)")
	outDir := flag.String("out", "exports", "output directory for JSON exports")
	noEnrich := flag.Bool("no-enrich", false, "skip oracle enrichment")
	validateOnly := flag.String("validate-only", "", "validate an existing export file instead of scraping")
	listCats := flag.Bool("list-categories", false, "list available categories and exit")
	rateArg := flag.Float64("rate", 0, "ILS to USD exchange rate override (0 = fetch)")
	flag.Parse()

	cfg := config.Load()
	registry := catalog.Map()

	if *listCats {
		fmt.Println("Available categories:")
		for _, key := range catalog.Keys() {
			fmt.Printf("  %-25s - %s (%s)\n", key, registry[key].Description, registry[key].Group)
		}
		return
	}

	if *validateOnly != "" {
		if _, err := export.Validate(*validateOnly); err != nil {
			log.Fatalf("Validation failed: %v", err)
		}
		return
	}

	observability.Start(cfg.MetricsPort)

	keys := selectCategories(*catsArg, registry)
	if len(keys) == 0 {
		log.Fatal("No known categories selected")
	}

	ctx := context.Background()

	var cache *crawler.PageCache
	if cfg.RedisURL != "" {
		cache = crawler.NewPageCache(cfg.RedisURL)
	}
	fetcher := crawler.NewFetcher(cfg.RequestTimeout, cache)
	c := &crawler.Crawler{Fetcher: fetcher, BaseURL: cfg.BaseURL, Delay: cfg.RequestDelay}

	log.Printf("Testing connection to %s...", cfg.BaseURL)
	if _, err := fetcher.Fetch(ctx, cfg.BaseURL); err != nil {
		log.Fatalf("Cannot reach %s (the site is geo-restricted): %v", cfg.BaseURL, err)
	}

	rate := *rateArg
	if rate == 0 {
		rate = cfg.ExchangeRate
	}
	if rate == 0 {
		rate = exchange.Rate()
	}

	var batcher *enrich.Batcher
	switch {
	case *noEnrich:
		log.Println("Oracle enrichment skipped (-no-enrich)")
	case cfg.OpenAIKey == "":
		log.Println("WARNING: OPENAI_API_KEY not set, skipping enrichment")
	default:
		batcher = &enrich.Batcher{
			Oracle:          enrich.NewOpenAIOracle(cfg.OpenAIKey, cfg.OracleTimeout),
			Delay:           cfg.OracleDelay,
			EnrichBatchSize: cfg.EnrichBatchSize,
			VerifyBatchSize: cfg.VerifyBatchSize,
		}
	}

	results := make(map[string]model.CategoryResult)
	for i, key := range keys {
		if i > 0 {
			time.Sleep(cfg.RequestDelay)
		}
		cat := registry[key]
		res := c.Crawl(ctx, cat)

		if batcher != nil && len(res.Products) > 0 {
			log.Printf("Enriching %d products...", len(res.Products))
			res.SetProducts(batcher.Enrich(ctx, res.Products, cat.Description))
		}

		products := res.Products
		for j := range products {
			products[j].PriceUSD, products[j].PriceRatio = pricing.Price(products[j].PriceLocal, products[j].ReferenceUSD, rate)
		}
		res.SetProducts(products)

		results[key] = res
	}

	prefix := "ivory_products"
	if len(keys) == 1 {
		prefix = keys[0]
	}

	captured := time.Now()
	snap := export.Build(results, "ivory.co.il", rate, captured)
	path, err := export.Save(snap, *outDir, prefix, captured)
	if err != nil {
		log.Fatalf("Failed to save export: %v", err)
	}
	log.Printf("Saved results to %s", path)

	archive(ctx, cfg.DatabaseURL, snap)

	if _, err := export.Validate(path); err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	log.Println("Scraping complete")
}

func selectCategories(arg string, registry map[string]catalog.Category) []string {
	if arg == "" {
		return catalog.Keys()
	}

	var keys []string
	for _, key := range strings.Split(arg, ",") {
		key = strings.TrimSpace(key)
		if _, ok := registry[key]; !ok {
			log.Printf("Unknown category: %s", key)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// archive best-effort copies the finished run into Postgres; failures are
// logged and never fail the run.
func archive(ctx context.Context, databaseURL string, snap model.Snapshot) {
	if databaseURL == "" {
		return
	}

	conn, err := db.New(databaseURL)
	if err != nil {
		log.Printf("Archive: failed to open database: %v", err)
		return
	}
	defer conn.Close()

	runRepo := &repository.RunRepository{DB: conn}
	runID, err := runRepo.SaveRun(snap)
	if err != nil {
		log.Printf("Archive: failed to save run: %v", err)
		return
	}

	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		log.Printf("Archive: failed to open pool: %v", err)
		return
	}
	defer pool.Close()

	prodRepo := &repository.ProductRepository{DB: pool}
	if err := prodRepo.SaveSnapshot(ctx, runID, snap); err != nil {
		log.Printf("Archive: %v", err)
		return
	}
	log.Printf("Archived run %s", runID)
}
