package ask

import (
	"context"

	"github.com/lexrag-io/lexrag/internal/domain"
	"github.com/lexrag-io/lexrag/internal/usecase/route"
)

// mockRetriever returns canned hits per collection.
type mockRetriever struct {
	byCollection map[string][]domain.Hit
	err          error
	calls        []string
	lastK        int
}

func (m *mockRetriever) Retrieve(
	_ context.Context, collection, query string, k int,
) (domain.RetrievalResult, error) {
	m.calls = append(m.calls, collection)
	m.lastK = k
	if m.err != nil {
		return domain.RetrievalResult{}, m.err
	}
	return domain.RetrievalResult{Query: query, Hits: m.byCollection[collection]}, nil
}

// mockSynth records the retrieval result it was handed.
type mockSynth struct {
	answer domain.Answer
	err    error
	last   domain.RetrievalResult
	calls  int
}

func (m *mockSynth) Synthesize(
	_ context.Context, _ string, result domain.RetrievalResult,
) (domain.Answer, error) {
	m.calls++
	m.last = result
	return m.answer, m.err
}

// mockRouter always returns a fixed decision.
type mockRouter struct {
	decision route.Decision
	calls    int
}

func (m *mockRouter) Route(string) route.Decision {
	m.calls++
	return m.decision
}

func hit(id string, score float64) domain.Hit {
	return domain.Hit{Doc: domain.Document{ID: id}, Score: score}
}
