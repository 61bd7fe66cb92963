// Package catalog holds the static category registry the scraper works from.
package catalog

import (
	_ "embed"
	"encoding/json"
	"sort"
	"strings"
)

//go:embed categories.json
var categoriesJSON []byte

// Category is one crawlable catalog section.
type Category struct {
	Key         string
	Description string
	Group       string
	Link        string
}

type categoryFile struct {
	Categories []struct {
		Category string `json:"category"`
		Items    []struct {
			Description string `json:"description"`
			Link        string `json:"link"`
		} `json:"items"`
	} `json:"categories"`
}

// Map returns the flat key -> Category registry.
func Map() map[string]Category {
	var f categoryFile
	// the file is embedded, a decode failure is a build defect
	if err := json.Unmarshal(categoriesJSON, &f); err != nil {
		panic("catalog: bad embedded categories.json: " + err.Error())
	}

	m := make(map[string]Category)
	for _, g := range f.Categories {
		for _, item := range g.Items {
			key := KeyFor(item.Description)
			m[key] = Category{
				Key:         key,
				Description: item.Description,
				Group:       g.Category,
				Link:        item.Link,
			}
		}
	}
	return m
}

// KeyFor derives a registry key from a category description: lowercased,
// spaces to dashes, parentheses stripped.
func KeyFor(description string) string {
	key := strings.ToLower(description)
	key = strings.ReplaceAll(key, " ", "-")
	key = strings.ReplaceAll(key, "(", "")
	key = strings.ReplaceAll(key, ")", "")
	return key
}

// Keys returns all registry keys sorted.
func Keys() []string {
	m := Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
