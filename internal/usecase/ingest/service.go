package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexrag-io/lexrag/internal/domain"
	"github.com/lexrag-io/lexrag/internal/logger"
	"github.com/lexrag-io/lexrag/internal/repository/document"
)

// Options controls chunking and batching.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	MaxBatchSize int
}

// Report summarizes one ingest run.
type Report struct {
	Ingested int `json:"ingested"` // records written
	Replaced int `json:"replaced"` // records that already existed and were re-chunked
	Chunks   int `json:"chunks"`   // chunk documents written
	Skipped  int `json:"skipped"`  // records dropped for invalid kind or empty text
}

// Service chunks scraper records, embeds the chunks, and writes them to the
// collection their kind maps to. Re-ingesting a record replaces all of its
// chunks, so a run is idempotent.
type Service struct {
	repo       Repository
	embed      Embedder
	opts       Options
	newBackOff func(ctx context.Context) backoff.BackOff
}

// New creates an ingest service.
func New(repo Repository, embed Embedder, opts Options) *Service {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 200
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 64
	}
	s := &Service{repo: repo, embed: embed, opts: opts}
	s.newBackOff = func(ctx context.Context) backoff.BackOff {
		return backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	}
	return s
}

// WithRetry bounds retries of transient embedding failures to attempts total
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

// Ingest writes records into their collections. Records with an unknown kind
// or no text are skipped and counted, not fatal. A provider or storage error
// aborts the run with the partial report.
func (s *Service) Ingest(ctx context.Context, records []domain.Record) (Report, error) {
	log := logger.FromContext(ctx)

	for _, coll := range domain.Collections() {
		if err := s.repo.EnsureCollection(ctx, coll); err != nil {
			return Report{}, fmt.Errorf("ensure collection %s: %w", coll, err)
		}
	}

	var rep Report
	for i := range records {
		rec := &records[i]

		if !rec.Kind.IsValid() || strings.TrimSpace(rec.Text) == "" {
			rep.Skipped++
			log.Warn("skipping record",
				zap.String("id", rec.ID),
				zap.String("kind", string(rec.Kind)))
			continue
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}

		written, replaced, err := s.ingestRecord(ctx, rec)
		if err != nil {
			return rep, fmt.Errorf("ingest record %s: %w", rec.ID, err)
		}

		rep.Ingested++
		rep.Chunks += written
		if replaced {
			rep.Replaced++
		}
	}

	log.Info("ingest finished",
		zap.Int("ingested", rep.Ingested),
		zap.Int("replaced", rep.Replaced),
		zap.Int("chunks", rep.Chunks),
		zap.Int("skipped", rep.Skipped))

	return rep, nil
}

// ingestRecord replaces the record's chunks. Old chunks are removed from
// every collection first, so a shorter re-ingest cannot leave stale tails
// behind and a record whose kind changed cannot leave chunks in its former
// collection.
func (s *Service) ingestRecord(ctx context.Context, rec *domain.Record) (int, bool, error) {
	collection := domain.CollectionFor(rec.Kind)

	var removed int
	for _, coll := range domain.Collections() {
		n, err := s.repo.DeleteByParent(ctx, coll, rec.ID)
		if err != nil {
			return 0, false, err
		}
		removed += n
	}

	chunks := splitText(composeContent(rec), s.opts.ChunkSize, s.opts.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, removed > 0, nil
	}

	meta := domain.Metadata{
		Title:         rec.Title,
		ArticleNumber: rec.ArticleNumber,
		URL:           rec.URL,
		Date:          rec.Date,
		Jurisdiction:  rec.Jurisdiction,
		Fine:          rec.Fine,
		Currency:      rec.Currency,
	}

	var written int
	for offset := 0; offset < len(chunks); offset += s.opts.MaxBatchSize {
		end := offset + s.opts.MaxBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		embRes, err := s.embedWithRetry(ctx, batch)
		if err != nil {
			return written, removed > 0, fmt.Errorf("embed chunks [%d:%d]: %w", offset, end, err)
		}
		if len(embRes.Embeddings) != len(batch) {
			return written, removed > 0, fmt.Errorf(
				"got %d vectors for %d chunks: %w",
				len(embRes.Embeddings), len(batch), domain.ErrProvider)
		}

		docs := make([]domain.Document, len(batch))
		for i, chunk := range batch {
			docs[i] = domain.Document{
				ID:       document.ChunkID(rec.ID, offset+i),
				ParentID: rec.ID,
				Kind:     rec.Kind,
				Content:  chunk,
				Meta:     meta,
				Vector:   embRes.Embeddings[i],
			}
		}

		if err := s.repo.UpsertMulti(ctx, collection, docs); err != nil {
			return written, removed > 0, err
		}
		written += len(docs)
	}

	return written, removed > 0, nil
}

// composeContent prepends the record's headline metadata to the body so every
// chunk embeds with its source context.
func composeContent(rec *domain.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", rec.Title)
	if rec.ArticleNumber != "" {
		fmt.Fprintf(&b, "Article: %s\n", rec.ArticleNumber)
	}
	if rec.Jurisdiction != "" {
		fmt.Fprintf(&b, "Jurisdiction: %s\n", rec.Jurisdiction)
	}
	b.WriteString(rec.Text)
	return b.String()
}

func (s *Service) embedWithRetry(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	var res domain.BatchEmbeddingResult

	op := func() error {
		var err error
		res, err = s.embed.BatchEmbed(ctx, texts)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrTransientProvider) {
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, s.newBackOff(ctx)); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return res, nil
}
