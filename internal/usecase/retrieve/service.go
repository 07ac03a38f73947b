package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/lexrag-io/lexrag/internal/domain"
	"github.com/lexrag-io/lexrag/internal/metrics"
)

// DefaultK is the number of candidates retrieved when the caller does not
// override it.
const DefaultK = 5

// Service embeds a query, searches the vector index, and filters hits below
// the similarity threshold. An empty result is a valid outcome, not an error.
type Service struct {
	repo          Repository
	embed         Embedder
	minScore      float64
	maxQueryChars int
	newBackOff    func(ctx context.Context) backoff.BackOff
}

// New creates a retrieval service. minScore is the similarity threshold.
func New(repo Repository, embed Embedder, minScore float64) *Service {
	s := &Service{
		repo:          repo,
		embed:         embed,
		minScore:      minScore,
		maxQueryChars: 2000,
	}
	s.newBackOff = func(ctx context.Context) backoff.BackOff {
		return backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	}
	return s
}

// WithRetry bounds retries of transient provider failures to attempts total
// tries.
func (s *Service) WithRetry(attempts uint64) *Service {
	if attempts == 0 {
		attempts = 1
	}
	retries := attempts - 1
	s.newBackOff = func(ctx context.Context) backoff.BackOff {
		return backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	}
	return s
}

// WithMaxQueryChars caps query text sent to the embedder.
func (s *Service) WithMaxQueryChars(n int) *Service {
	if n > 0 {
		s.maxQueryChars = n
	}
	return s
}

// Retrieve runs a top-k semantic search against a collection.
// Transient embedding failures are retried with exponential backoff; once
// retries are exhausted the error is surfaced, never treated as "no match".
func (s *Service) Retrieve(
	ctx context.Context, collection, query string, k int,
) (domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.RetrievalResult{}, domain.ErrEmptyQuery
	}
	if !domain.KnownCollection(collection) {
		return domain.RetrievalResult{}, fmt.Errorf("%q: %w", collection, domain.ErrCollectionUnknown)
	}
	if k <= 0 {
		k = DefaultK
	}

	embText := truncate(query, s.maxQueryChars)

	embRes, err := s.embedWithRetry(ctx, embText)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf(
			"vectorize query for %s: %w", collection, err)
	}

	hits, err := s.repo.SearchKNN(ctx, collection, embRes.Embedding, k)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("search %s: %w", collection, err)
	}

	kept := hits[:0]
	for _, h := range hits {
		if h.Score >= s.minScore {
			kept = append(kept, h)
			continue
		}
		metrics.RetrievalHitsTotal.WithLabelValues(collection, "below_threshold").Inc()
	}
	metrics.RetrievalHitsTotal.WithLabelValues(collection, "returned").Add(float64(len(kept)))

	return domain.RetrievalResult{Query: query, Hits: kept}, nil
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// embedWithRetry retries the embedding call while the failure is transient.
func (s *Service) embedWithRetry(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var res domain.EmbeddingResult

	op := func() error {
		var err error
		res, err = s.embed.Embed(ctx, text)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrTransientProvider) {
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, s.newBackOff(ctx)); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return res, nil
}
