package corpus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/storage"
)

// Claims is the persisted list of product claims.
type Claims struct {
	items *storage.Collection[domain.Claim]
	now   func() time.Time
}

func NewClaims(store domain.BlobStore) *Claims {
	return &Claims{
		items: storage.NewCollection[domain.Claim](store, domain.CollectionProductClaims),
		now:   time.Now,
	}
}

// List returns every claim. Claims stored without a language count as EN.
func (c *Claims) List(ctx context.Context) ([]domain.Claim, error) {
	all, err := c.items.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Language == "" {
			all[i].Language = domain.DefaultLanguage
		}
	}
	return all, nil
}

// FindByProductAndLanguage returns the claims listing productCode in the
// exact language.
func (c *Claims) FindByProductAndLanguage(ctx context.Context, productCode, language string) ([]domain.Claim, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Claim, 0)
	for _, cl := range all {
		if cl.Language == language && cl.AppliesTo(productCode) {
			out = append(out, cl)
		}
	}
	return out, nil
}

// Add appends a claim. Text, type and at least one product id are required.
func (c *Claims) Add(ctx context.Context, claim domain.Claim) (domain.Claim, error) {
	claim.ProductIDs = ParseProductIDs(strings.Join(claim.ProductIDs, ","))
	if strings.TrimSpace(claim.Claim) == "" || strings.TrimSpace(claim.ClaimType) == "" || len(claim.ProductIDs) == 0 {
		return domain.Claim{}, fmt.Errorf("claim needs text, type and product ids: %w", domain.ErrInvalidField)
	}
	if claim.Language == "" {
		claim.Language = domain.DefaultLanguage
	}
	claim.ID = uuid.NewString()
	claim.CreatedAt = c.now().UTC()
	_, err := c.items.Update(ctx, func(items []domain.Claim) ([]domain.Claim, error) {
		return append(items, claim), nil
	})
	if err != nil {
		return domain.Claim{}, err
	}
	return claim, nil
}

// Delete removes the claim with id.
func (c *Claims) Delete(ctx context.Context, id string) error {
	_, err := c.items.Update(ctx, func(items []domain.Claim) ([]domain.Claim, error) {
		return removeByID(items, id, func(cl domain.Claim) string { return cl.ID })
	})
	return err
}

// ParseProductIDs splits a comma, semicolon or newline separated list.
func ParseProductIDs(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ domain.ClaimsRepository = (*Claims)(nil)
