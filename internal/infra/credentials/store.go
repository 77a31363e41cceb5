// Package credentials keeps LLM provider API keys in postgres so operators
// can rotate them without redeploying.
package credentials

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalogstudio/internal/infra"
	"catalogstudio/internal/sqlinline"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Providers lists the providers a key can be stored for.
var Providers = []string{ProviderGemini, ProviderOpenAI}

// Credential is one stored provider key.
type Credential struct {
	Provider  string
	Token     string
	Source    string
	UpdatedAt time.Time
}

// Masked shows the last four characters of the token.
func (c Credential) Masked() string {
	if len(c.Token) <= 4 {
		return strings.Repeat("*", len(c.Token))
	}
	return strings.Repeat("*", len(c.Token)-4) + c.Token[len(c.Token)-4:]
}

// Store reads and writes rows of integration_tokens.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QEnsureIntegrationTokensTable)
	return err
}

// Lookup returns the stored credential and whether one exists.
func (s *Store) Lookup(ctx context.Context, provider string) (Credential, bool, error) {
	provider, err := canonical(provider)
	if err != nil {
		return Credential{}, false, err
	}
	cred := Credential{Provider: provider}
	var source *string
	err = s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider).Scan(&cred.Token, &source, &cred.UpdatedAt)
	if infra.IsNoRows(err) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, fmt.Errorf("load %s key: %w", provider, err)
	}
	cred.Token = strings.TrimSpace(cred.Token)
	if source != nil {
		cred.Source = *source
	}
	return cred, cred.Token != "", nil
}

// APIKey returns the key for provider, or "" when none is stored.
func (s *Store) APIKey(ctx context.Context, provider string) (string, error) {
	cred, _, err := s.Lookup(ctx, provider)
	return cred.Token, err
}

// Put stores key for provider, replacing any previous key.
func (s *Store) Put(ctx context.Context, provider, key, source string) error {
	provider, err := canonical(provider)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%s api key is required", provider)
	}
	if source == "" {
		source = "unknown"
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, key, source)
	return err
}

// Remove deletes the key for provider and reports whether one existed.
func (s *Store) Remove(ctx context.Context, provider string) (bool, error) {
	provider, err := canonical(provider)
	if err != nil {
		return false, err
	}
	tag, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, provider)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func canonical(provider string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(provider))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported provider %q", provider)
}
