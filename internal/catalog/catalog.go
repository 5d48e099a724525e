// Package catalog defines the catalog item model and the JSON catalog loader
// used by the indexing job.
//
// A catalog item is immutable after the index build: the indexing job is the
// single writer of the vector index, the recommendation core a read-only
// consumer.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptyCatalog indicates the catalog file contains no items.
var ErrEmptyCatalog = errors.New("catalog is empty")

// Item is a single catalog entry.
//
// Title is the stable identity; ShortProfile is the short theme/keyword text
// that gets embedded; FullText is the detailed summary returned to users.
type Item struct {
	Title        string `json:"title"`
	ShortProfile string `json:"short"`
	FullText     string `json:"full"`
}

// LoadFile reads a JSON catalog file (an array of items) and validates it.
// Titles must be unique and non-empty; short profiles must be non-empty since
// they are the only text the index embeds.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalog, path)
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			return nil, fmt.Errorf("catalog item %d has an empty title", i)
		}
		if _, dup := seen[title]; dup {
			return nil, fmt.Errorf("duplicate catalog title %q", title)
		}
		seen[title] = struct{}{}

		if strings.TrimSpace(item.ShortProfile) == "" {
			return nil, fmt.Errorf("catalog item %q has an empty short profile", title)
		}
		if strings.TrimSpace(item.FullText) == "" {
			return nil, fmt.Errorf("catalog item %q has an empty full text", title)
		}
	}

	return items, nil
}
