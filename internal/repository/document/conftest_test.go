package document

import (
	"context"
	"strings"
	"testing"

	"github.com/lexrag-io/lexrag/internal/db"
	"github.com/lexrag-io/lexrag/internal/domain"
)

// mockStore implements the store consumer interface for tests.
type mockStore struct {
	hashes      map[string]map[string]string
	indexes     map[string]bool
	hsetErr     error
	createErr   error
	dropErr     error
	searchCount int
	countErr    error
	lastDef     *db.IndexDefinition
}

func newMockStore() *mockStore {
	return &mockStore{
		hashes:  map[string]map[string]string{},
		indexes: map[string]bool{},
	}
}

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	for _, it := range items {
		m.hashes[it.Key] = it.Fields
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return m.hashes[key], nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.hashes, k)
	}
	return nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.indexes[def.Name] {
		return db.ErrIndexExists
	}
	m.indexes[def.Name] = true
	m.lastDef = def
	return nil
}

func (m *mockStore) DropIndex(_ context.Context, name string) error {
	if m.dropErr != nil {
		return m.dropErr
	}
	if !m.indexes[name] {
		return db.ErrIndexNotFound
	}
	delete(m.indexes, name)
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, name string) (bool, error) {
	return m.indexes[name], nil
}

func (m *mockStore) SearchCount(_ context.Context, _, _ string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.searchCount, nil
}

func newTestRepo(t *testing.T, dim int) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms, dim).WithHNSW(HNSWConfig{M: 16, EFConstruct: 200}), ms
}

func testDoc(id string, dim int) *domain.Document {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(i) * 0.1
	}
	return &domain.Document{
		ID:       id,
		ParentID: "parent",
		Kind:     domain.KindArticle,
		Content:  "some content",
		Meta: domain.Metadata{
			Title:         "Article 17 GDPR",
			ArticleNumber: "17",
			URL:           "https://gdprhub.eu/Article_17",
		},
		Vector: vec,
	}
}
