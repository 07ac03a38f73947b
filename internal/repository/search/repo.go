package search

import (
	"context"
	"fmt"

	"github.com/lexrag-io/lexrag/internal/db"
	"github.com/lexrag-io/lexrag/internal/domain"
	documentrepo "github.com/lexrag-io/lexrag/internal/repository/document"
)

// searcher is the consumer interface for KNN search (ISP).
type searcher interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/retrieve.Repository over FT.SEARCH.
type Repo struct {
	store searcher
}

// New creates a search repository.
func New(s searcher) *Repo {
	return &Repo{store: s}
}

// SearchKNN runs a top-k nearest-neighbor search against a collection index.
// Hits come back sorted by non-increasing similarity, never more than k.
// Equal scores keep the index's insertion order (RediSearch sorts stably by
// internal document id).
func (r *Repo) SearchKNN(
	ctx context.Context, collection string, vector []float32, k int,
) ([]domain.Hit, error) {
	returnFields := append(documentrepo.MetadataFields(), "__vector_score")

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName(collection),
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}

	hits := make([]domain.Hit, 0, len(res.Entries))
	for _, entry := range res.Entries {
		id := documentrepo.ExtractDocID(entry.Key, collection)
		hits = append(hits, domain.Hit{
			Doc:   documentrepo.ParseEntryFields(id, entry.Fields),
			Score: entry.Score,
		})
	}
	return hits, nil
}

func indexName(collection string) string {
	return domain.KeyPrefix + collection + ":idx"
}
