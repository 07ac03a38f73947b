package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lexrag-io/lexrag/internal/domain"
)

func TestRetrieve_FiltersBelowThreshold(t *testing.T) {
	repo := &mockRepo{hits: []domain.Hit{
		hit("a#0", 0.9),
		hit("b#0", 0.3),
		hit("c#0", 0.1),
	}}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := newTestService(repo, embed, 0.25)

	res, err := svc.Retrieve(context.Background(), domain.CollectionArticles, "right to erasure", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 2 {
		t.Fatalf("expected 2 hits above threshold, got %d", len(res.Hits))
	}
	if res.Hits[0].Doc.ID != "a#0" || res.Hits[1].Doc.ID != "b#0" {
		t.Errorf("unexpected hit order: %v", res.Hits)
	}
	if repo.lastK != 5 {
		t.Errorf("expected k=5 passed to repo, got %d", repo.lastK)
	}
}

func TestRetrieve_EmptyResultIsNotError(t *testing.T) {
	repo := &mockRepo{hits: nil}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := newTestService(repo, embed, 0.25)

	res, err := svc.Retrieve(context.Background(), domain.CollectionCases, "anything", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty() {
		t.Errorf("expected empty result, got %d hits", len(res.Hits))
	}
	if repo.lastK != DefaultK {
		t.Errorf("expected default k=%d, got %d", DefaultK, repo.lastK)
	}
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockEmbedder{}, 0.25)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := svc.Retrieve(context.Background(), domain.CollectionArticles, query, 5)
		if !errors.Is(err, domain.ErrEmptyQuery) {
			t.Errorf("query %q: expected ErrEmptyQuery, got %v", query, err)
		}
	}
}

func TestRetrieve_UnknownCollection(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockEmbedder{}, 0.25)

	_, err := svc.Retrieve(context.Background(), "contracts", "query", 5)
	if !errors.Is(err, domain.ErrCollectionUnknown) {
		t.Errorf("expected ErrCollectionUnknown, got %v", err)
	}
}

func TestRetrieve_RetriesTransientEmbedFailures(t *testing.T) {
	repo := &mockRepo{hits: []domain.Hit{hit("a#0", 0.8)}}
	embed := &mockEmbedder{
		vec:  []float32{0.1},
		errs: []error{domain.ErrTransientProvider, domain.ErrTransientProvider, nil},
	}
	svc := newTestService(repo, embed, 0.25)

	res, err := svc.Retrieve(context.Background(), domain.CollectionArticles, "query", 5)
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if embed.calls != 3 {
		t.Errorf("expected 3 embed attempts, got %d", embed.calls)
	}
	if len(res.Hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(res.Hits))
	}
}

func TestRetrieve_PermanentEmbedFailureIsNotRetried(t *testing.T) {
	embed := &mockEmbedder{errs: []error{domain.ErrProvider}}
	svc := newTestService(&mockRepo{}, embed, 0.25)

	_, err := svc.Retrieve(context.Background(), domain.CollectionArticles, "query", 5)
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if embed.calls != 1 {
		t.Errorf("expected 1 embed attempt, got %d", embed.calls)
	}
}

func TestRetrieve_ExhaustedRetriesSurfaceError(t *testing.T) {
	embed := &mockEmbedder{errs: []error{
		domain.ErrTransientProvider,
		domain.ErrTransientProvider,
		domain.ErrTransientProvider,
	}}
	svc := newTestService(&mockRepo{}, embed, 0.25)

	_, err := svc.Retrieve(context.Background(), domain.CollectionArticles, "query", 5)
	if !errors.Is(err, domain.ErrTransientProvider) {
		t.Fatalf("expected ErrTransientProvider after retries, got %v", err)
	}
	if embed.calls != 3 {
		t.Errorf("expected 3 embed attempts, got %d", embed.calls)
	}
}

func TestRetrieve_SearchErrorPropagates(t *testing.T) {
	repo := &mockRepo{err: domain.ErrIndexUnavailable}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := newTestService(repo, embed, 0.25)

	_, err := svc.Retrieve(context.Background(), domain.CollectionArticles, "query", 5)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestRetrieve_TruncatesLongQueries(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := newTestService(repo, embed, 0.25).WithMaxQueryChars(10)

	long := strings.Repeat("x", 100)
	res, err := svc.Retrieve(context.Background(), domain.CollectionArticles, long, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embed.lastText) != 10 {
		t.Errorf("expected embedder to receive 10 chars, got %d", len(embed.lastText))
	}
	if res.Query != long {
		t.Errorf("result query should keep the full text")
	}
}

func TestRetrieve_TruncationKeepsRunesWhole(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := newTestService(repo, embed, 0.25).WithMaxQueryChars(5)

	// Each é is two bytes; a byte-level cut at 5 would split the third rune.
	_, err := svc.Retrieve(context.Background(), domain.CollectionArticles, "éééé", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(embed.lastText) {
		t.Fatalf("embedder received invalid UTF-8: %q", embed.lastText)
	}
	if embed.lastText != "éé" {
		t.Errorf("expected truncation at the rune boundary, got %q", embed.lastText)
	}
}
