package domain

// KeyPrefix namespaces all keys written by this service.
const KeyPrefix = "lexrag:"

// Kind is the document kind. Each kind maps to exactly one collection.
type Kind string

const (
	// KindArticle is a GDPR article commentary.
	KindArticle Kind = "article"
	// KindCase is a DPA/court enforcement case summary.
	KindCase Kind = "case"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindArticle || k == KindCase
}

// Metadata carries the source information attached to every document.
type Metadata struct {
	Title         string
	ArticleNumber string
	URL           string
	Date          string
	Jurisdiction  string
	Fine          string
	Currency      string
}

// Document is an indexed passage: one chunk of an ingested record.
// Immutable once written; replaced only by re-ingesting the parent record.
type Document struct {
	ID       string // <parent>#<chunk index>
	ParentID string // scraper record the chunk came from
	Kind     Kind
	Content  string
	Meta     Metadata
	Vector   []float32 // not exposed to clients
}

// Record is a raw scraper record before chunking, as produced by the
// gdprhub.eu export jobs.
type Record struct {
	ID            string
	Kind          Kind
	Title         string
	Text          string
	ArticleNumber string
	URL           string
	Date          string
	Jurisdiction  string
	Fine          string
	Currency      string
}
