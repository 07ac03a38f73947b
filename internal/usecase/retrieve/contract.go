package retrieve

import (
	"context"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// Repository defines the storage contract for retrieval.
type Repository interface {
	SearchKNN(ctx context.Context, collection string, vector []float32, k int) ([]domain.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
