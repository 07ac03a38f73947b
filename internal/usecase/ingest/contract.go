package ingest

import (
	"context"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// Repository persists chunk documents and manages collection indexes.
type Repository interface {
	EnsureCollection(ctx context.Context, collection string) error
	UpsertMulti(ctx context.Context, collection string, docs []domain.Document) error
	DeleteByParent(ctx context.Context, collection, parentID string) (int, error)
	Count(ctx context.Context, collection string) (int, error)
}

// Embedder vectorizes chunk texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
