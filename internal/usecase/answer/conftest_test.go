package answer

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// mockGenerator implements the Generator consumer interface for tests.
type mockGenerator struct {
	output   string
	errs     []error // consumed per call, nil means success
	calls    int
	lastUser string
}

func (m *mockGenerator) Generate(_ context.Context, _, user string) (string, error) {
	idx := m.calls
	m.calls++
	m.lastUser = user
	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	return m.output, nil
}

// newTestService builds a synthesizer with retries driven by a zero backoff.
func newTestService(gen *mockGenerator) *Service {
	s := New(gen)
	s.newBackOff = func(ctx context.Context) backoff.BackOff {
		return backoff.WithContext(
			backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2), ctx)
	}
	return s
}

func testHits() []domain.Hit {
	return []domain.Hit{
		{
			Doc: domain.Document{
				ID:      "art17#0",
				Kind:    domain.KindArticle,
				Content: "The data subject shall have the right to obtain erasure.",
				Meta: domain.Metadata{
					Title:         "Article 17 GDPR",
					ArticleNumber: "17",
					URL:           "https://gdprhub.eu/Article_17",
				},
			},
			Score: 0.9,
		},
		{
			Doc: domain.Document{
				ID:      "case42#1",
				Kind:    domain.KindCase,
				Content: "The DPA fined the controller for refusing an erasure request.",
				Meta: domain.Metadata{
					Title:        "DPA Decision 42",
					URL:          "https://gdprhub.eu/Case_42",
					Jurisdiction: "Germany",
				},
			},
			Score: 0.7,
		},
	}
}

func testResult() domain.RetrievalResult {
	return domain.RetrievalResult{Query: "right to erasure", Hits: testHits()}
}
