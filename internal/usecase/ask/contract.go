package ask

import (
	"context"

	"github.com/lexrag-io/lexrag/internal/domain"
	"github.com/lexrag-io/lexrag/internal/usecase/route"
)

// Retriever runs a top-k semantic search against one collection.
type Retriever interface {
	Retrieve(ctx context.Context, collection, query string, k int) (domain.RetrievalResult, error)
}

// Synthesizer turns a retrieval result into a citation-grounded answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, result domain.RetrievalResult) (domain.Answer, error)
}

// Router decides which collections a query should search.
type Router interface {
	Route(query string) route.Decision
}
