package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/infra"
	"catalogstudio/internal/sqlinline"
)

// DocumentRepositoryPG implements domain.BlobStore on a single jsonb table.
type DocumentRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDocumentRepository creates a new DocumentRepositoryPG.
func NewDocumentRepository(sql infra.SQLExecutor) *DocumentRepositoryPG {
	return &DocumentRepositoryPG{sql: sql}
}

// EnsureSchema creates the documents table when missing.
func (r *DocumentRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QEnsureDocumentsTable); err != nil {
		return fmt.Errorf("ensure documents table: %w", err)
	}
	return nil
}

// Get fetches the document stored under name.
func (r *DocumentRepositoryPG) Get(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectDocument, name).Scan(&body); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("document %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("select document %s: %w", name, err)
	}
	return body, nil
}

// Put upserts the document. data must be valid JSON.
func (r *DocumentRepositoryPG) Put(ctx context.Context, name string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("document %s: body is not valid json", name)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QUpsertDocument, name, data); err != nil {
		return fmt.Errorf("upsert document %s: %w", name, err)
	}
	return nil
}

// Delete removes the document under name.
func (r *DocumentRepositoryPG) Delete(ctx context.Context, name string) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QDeleteDocument, name); err != nil {
		return fmt.Errorf("delete document %s: %w", name, err)
	}
	return nil
}

var _ domain.BlobStore = (*DocumentRepositoryPG)(nil)
