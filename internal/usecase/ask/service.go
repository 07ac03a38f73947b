package ask

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lexrag-io/lexrag/internal/domain"
	"github.com/lexrag-io/lexrag/internal/logger"
	"github.com/lexrag-io/lexrag/internal/usecase/retrieve"
)

// Result is the full outcome of one question: the synthesized answer plus the
// retrieval evidence it was grounded on.
type Result struct {
	Answer      domain.Answer
	Hits        []domain.Hit
	Collections []string
}

// Service is the question pipeline: route, retrieve per collection, merge,
// synthesize.
type Service struct {
	retriever Retriever
	synth     Synthesizer
	router    Router
	defaultK  int
	maxK      int
}

// New wires the pipeline. defaultK applies when the caller passes k <= 0,
// maxK caps caller-supplied values.
func New(retriever Retriever, synth Synthesizer, router Router, defaultK, maxK int) *Service {
	if defaultK <= 0 {
		defaultK = retrieve.DefaultK
	}
	if maxK < defaultK {
		maxK = defaultK
	}
	return &Service{
		retriever: retriever,
		synth:     synth,
		router:    router,
		defaultK:  defaultK,
		maxK:      maxK,
	}
}

// Ask answers a question. An explicit collection hint bypasses the router;
// otherwise the router picks the target collections. When both collections
// are searched, their hits are merged by score and truncated back to k.
func (s *Service) Ask(ctx context.Context, query, collectionHint string, k int) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, domain.ErrEmptyQuery
	}

	if k <= 0 {
		k = s.defaultK
	}
	if k > s.maxK {
		k = s.maxK
	}

	collections, err := s.targets(query, collectionHint)
	if err != nil {
		return Result{}, err
	}

	log := logger.FromContext(ctx)
	log.Debug("routing question",
		zap.Strings("collections", collections),
		zap.Int("k", k))

	lists := make([][]domain.Hit, 0, len(collections))
	for _, coll := range collections {
		res, err := s.retriever.Retrieve(ctx, coll, query, k)
		if err != nil {
			return Result{}, fmt.Errorf("retrieve from %s: %w", coll, err)
		}
		lists = append(lists, res.Hits)
	}

	hits := mergeByScore(k, lists...)

	ans, err := s.synth.Synthesize(ctx, query, domain.RetrievalResult{Query: query, Hits: hits})
	if err != nil {
		return Result{}, err
	}

	log.Info("question answered",
		zap.Strings("collections", collections),
		zap.Int("hits", len(hits)),
		zap.Int("citations", len(ans.Citations)))

	return Result{Answer: ans, Hits: hits, Collections: collections}, nil
}

// targets resolves the collections to search. A non-empty hint must name a
// known collection.
func (s *Service) targets(query, hint string) ([]string, error) {
	if hint != "" {
		if !domain.KnownCollection(hint) {
			return nil, fmt.Errorf("%q: %w", hint, domain.ErrCollectionUnknown)
		}
		return []string{hint}, nil
	}
	return s.router.Route(query).Collections(), nil
}
