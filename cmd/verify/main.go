package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"strings"
	"time"

	"ivoryscan/internal/config"
	"ivoryscan/internal/enrich"
	"ivoryscan/internal/export"
)

// go run cmd/verify/main.go -in=exports/ivory_products_latest.json
func main() {
	inPath := flag.String("in", "exports/ivory_products_latest.json", "export file to verify")
	outDir := flag.String("out", "exports", "output directory")
	flag.Parse()

	cfg := config.Load()
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	snap, err := export.Load(*inPath)
	if err != nil {
		log.Fatalf("Failed to load export: %v", err)
	}
	log.Printf("Loaded %d products, exchange rate %v", snap.TotalProducts, snap.ExchangeRate)

	batcher := &enrich.Batcher{
		Oracle:          enrich.NewOpenAIOracle(cfg.OpenAIKey, cfg.OracleTimeout),
		Delay:           cfg.OracleDelay,
		EnrichBatchSize: cfg.EnrichBatchSize,
		VerifyBatchSize: cfg.VerifyBatchSize,
	}

	ctx := context.Background()
	for group, cats := range snap.Categories {
		for key, cat := range cats {
			// categories verify independently; one failing batch never
			// blocks the others
			snap.Categories[group][key] = batcher.Verify(ctx, cat, snap.ExchangeRate)
		}
	}

	captured := time.Now()
	prefix := verifiedPrefix(*inPath)
	path, err := export.Save(snap, *outDir, prefix, captured)
	if err != nil {
		log.Fatalf("Failed to save verified export: %v", err)
	}
	log.Printf("Saved verified data to %s", path)

	// keep the main latest pointer on the corrected data
	if strings.HasSuffix(*inPath, "_latest.json") {
		if err := export.Overwrite(snap, *inPath); err != nil {
			log.Fatalf("Failed to update %s: %v", *inPath, err)
		}
		log.Printf("Updated %s", *inPath)
	}
}

func verifiedPrefix(inPath string) string {
	prefix := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	prefix = strings.TrimSuffix(prefix, "_latest")
	return prefix + "_verified"
}
