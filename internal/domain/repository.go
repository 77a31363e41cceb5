package domain

import "context"

// Logical names of the persisted collections.
const (
	CollectionFields               = "fields"
	CollectionGoldstandardExamples = "goldstandardExamples"
	CollectionProductClaims        = "productClaims"
	CollectionEnhancementHistory   = "enhancementHistory"
	CollectionEnhancedProducts     = "enhancedProducts"
	CollectionRequestLogs          = "requestLogs"
)

// BlobStore persists JSON documents under fixed logical names.
// Get returns ErrNotFound when nothing was stored yet.
type BlobStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// GoldstandardRepository is the read side of the goldstandard corpus plus the
// append used by the auto-harvest feedback loop.
type GoldstandardRepository interface {
	FindByFieldAndLanguage(ctx context.Context, fieldName, language string) ([]GoldstandardExample, error)
	AppendIfAbsent(ctx context.Context, example GoldstandardExample) (bool, error)
}

// ClaimsRepository looks up the claims defined for a product.
type ClaimsRepository interface {
	FindByProductAndLanguage(ctx context.Context, productCode, language string) ([]Claim, error)
}

// HistoryLedger is the write-only audit trail of enhancements.
type HistoryLedger interface {
	Append(ctx context.Context, entry HistoryEntry) error
}

// RequestRecorder stores request log entries and returns the entry id.
type RequestRecorder interface {
	Record(ctx context.Context, entry RequestLog) string
}

// FieldSource lists the current field configurations.
type FieldSource interface {
	List(ctx context.Context) ([]FieldConfig, error)
}

// ProductSource resolves the working copy of a product by code.
type ProductSource interface {
	GetProductData(ctx context.Context, code string) (Product, error)
}
