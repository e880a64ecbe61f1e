package archive

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Item is one archive image card.
type Item struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

type fileArchive struct {
	Items []Item `yaml:"items"`
}

// LoadFile reads a YAML archive listing.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML archive listing. Items without an ID get a random
// one; an item without a URL is an error.
func Parse(data []byte) ([]Item, error) {
	var fa fileArchive
	if err := yaml.Unmarshal(data, &fa); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}

	seen := make(map[string]bool, len(fa.Items))
	for i := range fa.Items {
		it := &fa.Items[i]
		if it.URL == "" {
			return nil, fmt.Errorf("archive item %d: missing url", i)
		}
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("archive item %d: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = true
		if it.Title == "" {
			it.Title = it.ID
		}
	}
	return fa.Items, nil
}
