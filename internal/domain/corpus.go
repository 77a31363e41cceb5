package domain

import "time"

// GoldstandardSourceAuto marks examples harvested from accepted enhancements.
const GoldstandardSourceAuto = "auto_enhancement"

// GoldstandardExample is an exemplar of ideal content for a field and language.
type GoldstandardExample struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	FieldName  string    `json:"fieldName"`
	Categories []string  `json:"categories"`
	Products   []string  `json:"products"`
	CreatedAt  time.Time `json:"createdAt"`
	Source     string    `json:"source,omitempty"`
	Language   string    `json:"language"`
}

// SameContent reports whether two examples collide under the dedup rule.
func (g GoldstandardExample) SameContent(other GoldstandardExample) bool {
	return g.FieldName == other.FieldName && g.Content == other.Content && g.Language == other.Language
}

// Claim is a verbatim marketing or regulatory sentence tied to products.
type Claim struct {
	ID         string    `json:"id"`
	Claim      string    `json:"claim"`
	ClaimType  string    `json:"claimType,omitempty"`
	Language   string    `json:"language"`
	ProductIDs []string  `json:"productIds"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// AppliesTo reports whether the claim is defined for the product code.
func (c Claim) AppliesTo(productCode string) bool {
	for _, id := range c.ProductIDs {
		if id == productCode {
			return true
		}
	}
	return false
}
