package chi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lexrag-io/lexrag/internal/domain"
	askuc "github.com/lexrag-io/lexrag/internal/usecase/ask"
	healthuc "github.com/lexrag-io/lexrag/internal/usecase/health"
	ingestuc "github.com/lexrag-io/lexrag/internal/usecase/ingest"
)

type mockAsker struct {
	res askuc.Result
	err error

	lastQuery      string
	lastCollection string
	lastK          int
}

func (m *mockAsker) Ask(_ context.Context, query, collectionHint string, k int) (askuc.Result, error) {
	m.lastQuery = query
	m.lastCollection = collectionHint
	m.lastK = k
	if m.err != nil {
		return askuc.Result{}, m.err
	}
	return m.res, nil
}

type mockIngester struct {
	report ingestuc.Report
	err    error

	lastRecords []domain.Record
}

func (m *mockIngester) Ingest(_ context.Context, records []domain.Record) (ingestuc.Report, error) {
	m.lastRecords = records
	if m.err != nil {
		return ingestuc.Report{}, m.err
	}
	return m.report, nil
}

type mockDocs struct {
	count int
	doc   domain.Document
	err   error

	lastCollection string
	lastID         string
}

func (m *mockDocs) Count(_ context.Context, _ string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

func (m *mockDocs) Get(_ context.Context, collection, id string) (domain.Document, error) {
	m.lastCollection = collection
	m.lastID = id
	if m.err != nil {
		return domain.Document{}, m.err
	}
	return m.doc, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report {
	return m.report
}

type serverMocks struct {
	asker    *mockAsker
	ingester *mockIngester
	docs     *mockDocs
	health   *mockHealth
}

func newTestServer(t *testing.T) (http.Handler, *serverMocks) {
	t.Helper()

	mocks := &serverMocks{
		asker:    &mockAsker{},
		ingester: &mockIngester{},
		docs:     &mockDocs{},
		health: &mockHealth{report: healthuc.Report{
			Database: healthuc.Status{Healthy: true},
			Provider: healthuc.Status{Healthy: true},
		}},
	}

	srv := NewServer(mocks.asker, mocks.ingester, mocks.docs, mocks.health, zap.NewNop())
	r := chirouter.NewRouter()
	srv.Register(r)
	return r, mocks
}

func doRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
