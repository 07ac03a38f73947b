package ingest

import (
	"context"
	"strings"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// mockRepo records documents per collection, keyed by document ID.
type mockRepo struct {
	mu          sync.Mutex
	docs        map[string]map[string]domain.Document // collection -> id -> doc
	ensured     []string
	upsertErr   error
	deleteErr   error
	deleteCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: map[string]map[string]domain.Document{}}
}

func (m *mockRepo) EnsureCollection(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured = append(m.ensured, collection)
	if m.docs[collection] == nil {
		m.docs[collection] = map[string]domain.Document{}
	}
	return nil
}

func (m *mockRepo) UpsertMulti(_ context.Context, collection string, docs []domain.Document) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = map[string]domain.Document{}
	}
	for _, d := range docs {
		m.docs[collection][d.ID] = d
	}
	return nil
}

func (m *mockRepo) DeleteByParent(_ context.Context, collection, parentID string) (int, error) {
	m.deleteCalls++
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int
	for id := range m.docs[collection] {
		if strings.HasPrefix(id, parentID+"#") {
			delete(m.docs[collection], id)
			removed++
		}
	}
	return removed, nil
}

func (m *mockRepo) Count(_ context.Context, collection string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[collection]), nil
}

// mockEmbedder returns a fixed-size vector per text.
type mockEmbedder struct {
	errs      []error // consumed per call, nil means success
	calls     int
	lastBatch []string
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	idx := m.calls
	m.calls++
	m.lastBatch = texts
	if idx < len(m.errs) && m.errs[idx] != nil {
		return domain.BatchEmbeddingResult{}, m.errs[idx]
	}
	embeddings := make([][]float32, len(texts))
	for i := range embeddings {
		embeddings[i] = []float32{0.1, 0.2, 0.3}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: len(texts) * 10}, nil
}

// newTestService builds an ingest service with instant retries.
func newTestService(repo *mockRepo, embed *mockEmbedder, opts Options) *Service {
	s := New(repo, embed, opts)
	s.newBackOff = func(ctx context.Context) backoff.BackOff {
		return backoff.WithContext(
			backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2), ctx)
	}
	return s
}

func articleRecord(id, text string) domain.Record {
	return domain.Record{
		ID:            id,
		Kind:          domain.KindArticle,
		Title:         "Article 17 GDPR",
		Text:          text,
		ArticleNumber: "17",
		URL:           "https://gdprhub.eu/Article_17",
	}
}

func caseRecord(id, text string) domain.Record {
	return domain.Record{
		ID:           id,
		Kind:         domain.KindCase,
		Title:        "DPA Decision",
		Text:         text,
		Jurisdiction: "France",
		Fine:         "50000000",
		Currency:     "EUR",
	}
}
