// Package catalog reads catalog version exports and flattens their category
// tree into products.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Category is one node of the catalog tree.
type Category struct {
	Name          string            `json:"name"`
	Products      []json.RawMessage `json:"products"`
	Subcategories []Category        `json:"subcategories"`
}

// Catalog is a decoded catalog version. Raw keeps every top-level key so an
// export can be written back with nothing lost.
type Catalog struct {
	Categories []Category
	Raw        map[string]json.RawMessage
}

// Load decodes a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{Raw: raw}
	if cats, ok := raw["categories"]; ok {
		if err := json.Unmarshal(cats, &c.Categories); err != nil {
			return nil, fmt.Errorf("decode catalog categories: %w", err)
		}
	}
	return c, nil
}

// LoadFile opens and decodes the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Empty returns a catalog without categories.
func Empty() *Catalog {
	return &Catalog{Raw: map[string]json.RawMessage{}}
}
