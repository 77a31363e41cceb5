package catalog

import (
	"encoding/json"
	"fmt"

	"catalogstudio/internal/domain"
)

// ExtractProducts walks the tree depth first and returns every product with
// its category name, parent category as subCategory, id set to the code and
// the legacy B2C description aliases filled in.
func ExtractProducts(c *Catalog) ([]domain.Product, error) {
	if c == nil {
		return nil, nil
	}
	var out []domain.Product
	var walk func(cat Category, parent string) error
	walk = func(cat Category, parent string) error {
		for i, raw := range cat.Products {
			var p domain.Product
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("category %q product %d: %w", cat.Name, i, err)
			}
			p.ID = p.Code
			p.CategoryName = cat.Name
			p.SubCategory = parent
			if p.Attributes == nil {
				p.Attributes = map[string]string{}
			}
			p.Attributes["B2C-description-long"] = p.Text("description")
			p.Attributes["B2C-description-short"] = p.Text("assortmentProductDescription")
			out = append(out, p)
		}
		for _, sub := range cat.Subcategories {
			if err := walk(sub, cat.Name); err != nil {
				return err
			}
		}
		return nil
	}
	for _, cat := range c.Categories {
		if err := walk(cat, ""); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ExtractCategoryNames returns every category name once, in first-seen order.
func ExtractCategoryNames(c *Catalog) []string {
	if c == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	var walk func(cat Category)
	walk = func(cat Category) {
		if _, ok := seen[cat.Name]; !ok {
			seen[cat.Name] = struct{}{}
			out = append(out, cat.Name)
		}
		for _, sub := range cat.Subcategories {
			walk(sub)
		}
	}
	for _, cat := range c.Categories {
		walk(cat)
	}
	return out
}
