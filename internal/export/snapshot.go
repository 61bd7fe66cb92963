// Package export assembles, writes and validates run snapshots.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ivoryscan/internal/model"
)

const timestampLayout = "2006-01-02T15-04-05"

// Build groups per-category results into a dated snapshot.
func Build(results map[string]model.CategoryResult, source string, exchangeRate float64, captured time.Time) model.Snapshot {
	grouped := make(map[string]map[string]model.CategoryResult)
	total := 0
	for key, res := range results {
		group := res.Group
		if group == "" {
			group = "Other"
		}
		if grouped[group] == nil {
			grouped[group] = make(map[string]model.CategoryResult)
		}
		grouped[group][key] = res
		total += res.ProductCount
	}

	return model.Snapshot{
		CaptureDate:   captured.Format(time.RFC3339),
		Source:        source,
		ExchangeRate:  exchangeRate,
		TotalProducts: total,
		Categories:    grouped,
	}
}

// Save writes the snapshot as <prefix>_<timestamp>.json and overwrites the
// <prefix>_latest.json pointer. It returns the timestamped path.
func Save(snap model.Snapshot, dir, prefix string, captured time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", prefix, captured.Format(timestampLayout)))
	if err := writeJSON(path, snap); err != nil {
		return "", err
	}

	latest := filepath.Join(dir, prefix+"_latest.json")
	if err := writeJSON(latest, snap); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(path string, snap model.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Overwrite rewrites an existing pointer file in place.
func Overwrite(snap model.Snapshot, path string) error {
	return writeJSON(path, snap)
}

// Load reads a previously saved snapshot, e.g. for the verification pass.
func Load(path string) (model.Snapshot, error) {
	var snap model.Snapshot
	b, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return snap, nil
}
