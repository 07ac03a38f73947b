// Package chi is the HTTP transport of the question answering service.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexrag-io/lexrag/internal/domain"
	askuc "github.com/lexrag-io/lexrag/internal/usecase/ask"
	healthuc "github.com/lexrag-io/lexrag/internal/usecase/health"
	ingestuc "github.com/lexrag-io/lexrag/internal/usecase/ingest"
)

const maxIngestRecords = 500

// Asker answers questions through the retrieval pipeline.
type Asker interface {
	Ask(ctx context.Context, query, collectionHint string, k int) (askuc.Result, error)
}

// Ingester writes scraper records into the document collections.
type Ingester interface {
	Ingest(ctx context.Context, records []domain.Record) (ingestuc.Report, error)
}

// DocumentReader reads stored documents and per-collection counts.
type DocumentReader interface {
	Get(ctx context.Context, collection, id string) (domain.Document, error)
	Count(ctx context.Context, collection string) (int, error)
}

// HealthChecker probes service dependencies.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the question answering API.
type Server struct {
	ask           Asker
	ingest        Ingester
	docs          DocumentReader
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ask Asker,
	ingest Ingester,
	docs DocumentReader,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ask:    ask,
		ingest: ingest,
		docs:   docs,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeEmptyQuery),
		sentinelHandler(domain.ErrCollectionUnknown, http.StatusBadRequest, codeCollectionUnknown),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrMalformedGeneration, http.StatusBadGateway, codeMalformedGeneration),
		sentinelHandler(domain.ErrTransientProvider, http.StatusServiceUnavailable, codeProviderUnavailable),
		sentinelHandler(domain.ErrProvider, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeIndexUnavailable),
	}
	return s
}

// Register mounts the API routes on a chi router.
func (s *Server) Register(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chirouter.Router) {
		r.Post("/ask", s.Ask)
		r.Post("/documents", s.IngestDocuments)
		r.Get("/collections/{collection}/stats", s.CollectionStats)
		r.Get("/collections/{collection}/documents/{id}", s.GetDocument)
	})
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.ask.Ask(r.Context(), req.Query, req.Collection, req.TopK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResultToResponse(res))
}

// IngestDocuments handles POST /v1/documents.
func (s *Server) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Records) == 0 || len(req.Records) > maxIngestRecords {
		writeError(w, http.StatusBadRequest, codeBadRequest,
			"records count must be between 1 and 500")
		return
	}

	records := make([]domain.Record, len(req.Records))
	for i, item := range req.Records {
		records[i] = recordFromItem(item)
	}

	report, err := s.ingest.Ingest(r.Context(), records)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// CollectionStats handles GET /v1/collections/{collection}/stats.
func (s *Server) CollectionStats(w http.ResponseWriter, r *http.Request) {
	collection := chirouter.URLParam(r, "collection")
	if !domain.KnownCollection(collection) {
		writeError(w, http.StatusBadRequest, codeCollectionUnknown, domain.ErrCollectionUnknown.Error())
		return
	}

	count, err := s.docs.Count(r.Context(), collection)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Collection: collection, Documents: count})
}

// GetDocument handles GET /v1/collections/{collection}/documents/{id}.
// Chunk IDs contain "#", so callers URL-encode it as %23.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	collection := chirouter.URLParam(r, "collection")
	if !domain.KnownCollection(collection) {
		writeError(w, http.StatusBadRequest, codeCollectionUnknown, domain.ErrCollectionUnknown.Error())
		return
	}

	doc, err := s.docs.Get(r.Context(), collection, chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToResponse(collection, doc))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrCollectionUnknown,
		domain.ErrVectorDimMismatch,
		domain.ErrDocumentNotFound,
		domain.ErrMalformedGeneration,
		domain.ErrTransientProvider,
		domain.ErrProvider,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
