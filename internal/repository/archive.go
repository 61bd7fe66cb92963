// Package repository archives finished runs to Postgres for run-over-run
// price comparisons.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ivoryscan/internal/model"
)

// RunRepository stores one row per pipeline run plus the raw snapshot.
type RunRepository struct {
	DB *sql.DB
}

// SaveRun inserts the run header and returns its id.
func (r *RunRepository) SaveRun(snap model.Snapshot) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	id := uuid.New().String()
	_, err = r.DB.Exec(`
		INSERT INTO scrape_runs
		(id, capture_date, source, exchange_rate, total_products, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, snap.CaptureDate, snap.Source, snap.ExchangeRate, snap.TotalProducts, raw)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ProductRepository stores one row per scraped product.
type ProductRepository struct {
	DB *pgxpool.Pool
}

func (r *ProductRepository) Save(ctx context.Context, runID, categoryKey, group string, p model.Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO scrape_products
		(id, run_id, category_key, category_group, product_id, name, url, in_stock,
		 price_ils, manufacturer, part_number, description_en, us_rrp_usd, price_usd, price_ratio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, uuid.New(), runID, categoryKey, group, p.ID, p.Name, p.URL, p.InStock,
		p.PriceLocal, p.Manufacturer, p.PartNumber, p.DescriptionEN, p.ReferenceUSD, p.PriceUSD, p.PriceRatio)
	return err
}

// SaveSnapshot writes every product of the snapshot under the given run id.
func (r *ProductRepository) SaveSnapshot(ctx context.Context, runID string, snap model.Snapshot) error {
	for group, cats := range snap.Categories {
		for key, cat := range cats {
			for _, p := range cat.Products {
				if err := r.Save(ctx, runID, key, group, p); err != nil {
					return fmt.Errorf("failed to archive product %s: %w", p.ID, err)
				}
			}
		}
	}
	return nil
}
