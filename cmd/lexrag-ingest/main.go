// Command lexrag-ingest loads a gdprhub.eu scraper export into the document
// collections.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/lexrag-io/lexrag/internal/config"
	dbRedis "github.com/lexrag-io/lexrag/internal/db/redis"
	"github.com/lexrag-io/lexrag/internal/domain"
	logpkg "github.com/lexrag-io/lexrag/internal/logger"
	"github.com/lexrag-io/lexrag/internal/metrics"
	documentrepo "github.com/lexrag-io/lexrag/internal/repository/document"
	"github.com/lexrag-io/lexrag/internal/repository/embcache"
	openaiTransport "github.com/lexrag-io/lexrag/internal/transport/openai"
	ingestuc "github.com/lexrag-io/lexrag/internal/usecase/ingest"
	"github.com/lexrag-io/lexrag/internal/version"
)

// exportRecord is one entry of the scraper export file.
type exportRecord struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Text          string `json:"text"`
	ArticleNumber string `json:"article_number"`
	URL           string `json:"url"`
	Date          string `json:"date"`
	Jurisdiction  string `json:"jurisdiction"`
	Fine          string `json:"fine"`
	Currency      string `json:"currency"`
}

func main() {
	file := flag.String("file", "", "path to the scraper JSON export")
	reset := flag.Bool("reset", false, "drop and recreate the collection indexes before ingesting")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *file == "" {
		logger.Fatal("Missing required -file flag")
	}

	logger.Info("Starting ingest",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("file", *file),
	)

	records, err := loadRecords(*file)
	if err != nil {
		logger.Fatal("Failed to load export file", zap.Error(err))
	}
	logger.Info("Export file loaded", zap.Int("records", len(records)))

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := logpkg.ContextWithLogger(context.Background(), logger)
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterPipelineMetrics()

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Provider.Name,
		Timeout:    time.Duration(cfg.Provider.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	embedder := embcache.New(base, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)

	docRepo := documentrepo.New(store, cfg.Embedding.Dimensions).
		WithHNSW(documentrepo.HNSWConfig{
			M:           cfg.Retrieval.HNSWM,
			EFConstruct: cfg.Retrieval.HNSWEFConstruct,
		})

	if *reset {
		for _, coll := range domain.Collections() {
			if err := docRepo.DropCollection(ctx, coll); err != nil {
				logger.Fatal("Failed to reset collection",
					zap.String("collection", coll), zap.Error(err))
			}
		}
		logger.Info("Collection indexes dropped, ingest will recreate them")
	}

	svc := ingestuc.New(docRepo, embedder, ingestuc.Options{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		MaxBatchSize: cfg.Ingest.MaxBatchSize,
	}).WithRetry(uint64(cfg.Retrieval.RetryAttempts))

	report, err := svc.Ingest(ctx, records)
	if err != nil {
		logger.Fatal("Ingest failed",
			zap.Int("ingested", report.Ingested),
			zap.Int("chunks", report.Chunks),
			zap.Error(err))
	}

	logger.Info("Ingest complete",
		zap.Int("ingested", report.Ingested),
		zap.Int("replaced", report.Replaced),
		zap.Int("chunks", report.Chunks),
		zap.Int("skipped", report.Skipped),
	)
}

func loadRecords(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var export []exportRecord
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, err
	}

	records := make([]domain.Record, len(export))
	for i, r := range export {
		records[i] = domain.Record{
			ID:            r.ID,
			Kind:          domain.Kind(r.Type),
			Title:         r.Title,
			Text:          r.Text,
			ArticleNumber: r.ArticleNumber,
			URL:           r.URL,
			Date:          r.Date,
			Jurisdiction:  r.Jurisdiction,
			Fine:          r.Fine,
			Currency:      r.Currency,
		}
	}
	return records, nil
}
