package answer

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// NoMatchAnswer is returned verbatim when nothing cleared the similarity
// threshold. Generation is skipped entirely, so a fabricated citation is
// impossible for empty retrievals.
const NoMatchAnswer = "No relevant information was found in the GDPR article " +
	"or enforcement case collections for this question."

// Service builds the prompt, invokes the generation model, and parses the
// output into a citation-grounded answer.
type Service struct {
	gen        Generator
	newBackOff func(ctx context.Context) backoff.BackOff
}

// New creates a synthesizer.
func New(gen Generator) *Service {
	s := &Service{gen: gen}
	s.newBackOff = func(ctx context.Context) backoff.BackOff {
		return backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	}
	return s
}

// WithRetry bounds retries of transient provider failures to attempts total tries.
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

// Synthesize produces an answer for the query from the retrieval result.
// Malformed model output surfaces as ErrMalformedGeneration, never as a
// half-parsed answer.
func (s *Service) Synthesize(
	ctx context.Context, query string, result domain.RetrievalResult,
) (domain.Answer, error) {
	if result.Empty() {
		return domain.Answer{
			Text:      NoMatchAnswer,
			Citations: []domain.Citation{},
			Summary:   "No sources matched the question.",
		}, nil
	}

	user := buildUserPrompt(query, result.Hits)

	raw, err := s.generateWithRetry(ctx, systemPrompt, user)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	ans, err := parseGeneration(raw, result.Hits)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("parse answer: %w", err)
	}
	return ans, nil
}

func (s *Service) generateWithRetry(ctx context.Context, system, user string) (string, error) {
	var out string

	op := func() error {
		var err error
		out, err = s.gen.Generate(ctx, system, user)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrTransientProvider) {
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, s.newBackOff(ctx)); err != nil {
		return "", err
	}
	return out, nil
}
