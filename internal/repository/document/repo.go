package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexrag-io/lexrag/internal/db"
	"github.com/lexrag-io/lexrag/internal/domain"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores documents as hashes, one FT index per collection.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a document repository. vectorDim is the embedding
// dimensionality every vector in a collection must match.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// WithHNSW sets HNSW build parameters for newly created indexes.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureCollection creates the collection's vector index if it does not exist.
func (r *Repo) EnsureCollection(ctx context.Context, collection string) error {
	idxName := indexName(collection)

	exists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return fmt.Errorf("check index %s: %w: %w", idxName, domain.ErrIndexUnavailable, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     idxName,
		Prefixes: []string{keyPrefix(collection)},
		Fields: []db.IndexField{
			{Name: fieldContent, Type: db.IndexFieldText},
			{Name: fieldParentID, Type: db.IndexFieldTag},
			{Name: fieldKind, Type: db.IndexFieldTag},
			{
				Name:              fieldVector,
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w: %w", idxName, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// DropCollection removes the collection's index. Stored documents are kept;
// the next EnsureCollection rebuilds the index over them. A missing index is
// not an error.
func (r *Repo) DropCollection(ctx context.Context, collection string) error {
	if err := r.store.DropIndex(ctx, indexName(collection)); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		return fmt.Errorf("drop index %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// UpsertMulti writes multiple documents in a single pipelined round-trip.
func (r *Repo) UpsertMulti(ctx context.Context, collection string, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		doc := &docs[i]
		if len(doc.Vector) != r.vectorDim {
			return fmt.Errorf("document %s has dim %d, collection expects %d: %w",
				doc.ID, len(doc.Vector), r.vectorDim, domain.ErrVectorDimMismatch)
		}
		items[i] = db.HashSetItem{
			Key:    docKey(collection, doc.ID),
			Fields: buildHashFields(doc),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi %s: %w", collection, err)
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	key := docKey(collection, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return parseHashFields(id, m), nil
}

// DeleteByParent removes all chunk documents of a parent record.
// Returns the number of removed chunks.
func (r *Repo) DeleteByParent(ctx context.Context, collection, parentID string) (int, error) {
	pattern := docKey(collection, parentID) + chunkSeparator + "*"
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("del %d chunks of %s: %w", len(keys), parentID, err)
	}
	return len(keys), nil
}

// Count returns the number of documents in a collection.
func (r *Repo) Count(ctx context.Context, collection string) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(collection), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w: %w", collection, domain.ErrIndexUnavailable, err)
	}
	return n, nil
}

// chunkSeparator joins a parent record ID and a chunk index into a chunk ID.
const chunkSeparator = "#"

// ChunkID builds the document ID for chunk n of a parent record.
func ChunkID(parentID string, n int) string {
	return fmt.Sprintf("%s%s%d", parentID, chunkSeparator, n)
}

func keyPrefix(collection string) string {
	return domain.KeyPrefix + collection + ":"
}

func docKey(collection, id string) string {
	return keyPrefix(collection) + id
}

func indexName(collection string) string {
	return keyPrefix(collection) + "idx"
}
