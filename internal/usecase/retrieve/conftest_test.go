package retrieve

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// mockRepo implements the Repository consumer interface for tests.
type mockRepo struct {
	hits           []domain.Hit
	err            error
	lastCollection string
	lastK          int
	calls          int
}

func (m *mockRepo) SearchKNN(
	_ context.Context, collection string, _ []float32, k int,
) ([]domain.Hit, error) {
	m.calls++
	m.lastCollection = collection
	m.lastK = k
	return m.hits, m.err
}

// mockEmbedder implements the Embedder consumer interface for tests.
type mockEmbedder struct {
	vec      []float32
	errs     []error // consumed per call, nil means success
	calls    int
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	idx := m.calls
	m.calls++
	m.lastText = text
	if idx < len(m.errs) && m.errs[idx] != nil {
		return domain.EmbeddingResult{}, m.errs[idx]
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

// newTestService builds a service with retries driven by a zero backoff so
// tests run instantly.
func newTestService(repo *mockRepo, embed *mockEmbedder, minScore float64) *Service {
	s := New(repo, embed, minScore)
	s.newBackOff = func(ctx context.Context) backoff.BackOff {
		return backoff.WithContext(
			backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2), ctx)
	}
	return s
}

func hit(id string, score float64) domain.Hit {
	return domain.Hit{
		Doc:   domain.Document{ID: id, Content: "text " + id},
		Score: score,
	}
}
