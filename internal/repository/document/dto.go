package document

import (
	"encoding/binary"
	"math"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// Hash field names. The double-underscore fields are internal and never
// exposed to clients.
const (
	fieldContent       = "__content"
	fieldVector        = "__vector"
	fieldParentID      = "parent_id"
	fieldKind          = "kind"
	fieldTitle         = "title"
	fieldArticleNumber = "article_number"
	fieldURL           = "url"
	fieldDate          = "date"
	fieldJurisdiction  = "jurisdiction"
	fieldFine          = "fine"
	fieldCurrency      = "currency"
)

// MetadataFields lists the hash fields search results should return besides
// content and score.
func MetadataFields() []string {
	return []string{
		fieldContent, fieldParentID, fieldKind, fieldTitle, fieldArticleNumber,
		fieldURL, fieldDate, fieldJurisdiction, fieldFine, fieldCurrency,
	}
}

// buildHashFields converts a domain Document into a flat map[string]string for HSET.
func buildHashFields(doc *domain.Document) map[string]string {
	m := map[string]string{
		fieldContent:  doc.Content,
		fieldVector:   vectorToBytes(doc.Vector),
		fieldParentID: doc.ParentID,
		fieldKind:     string(doc.Kind),
	}
	setIfNonEmpty(m, fieldTitle, doc.Meta.Title)
	setIfNonEmpty(m, fieldArticleNumber, doc.Meta.ArticleNumber)
	setIfNonEmpty(m, fieldURL, doc.Meta.URL)
	setIfNonEmpty(m, fieldDate, doc.Meta.Date)
	setIfNonEmpty(m, fieldJurisdiction, doc.Meta.Jurisdiction)
	setIfNonEmpty(m, fieldFine, doc.Meta.Fine)
	setIfNonEmpty(m, fieldCurrency, doc.Meta.Currency)
	return m
}

func setIfNonEmpty(m map[string]string, key, val string) {
	if val != "" {
		m[key] = val
	}
}

// parseHashFields converts a flat hash map back into a domain Document.
func parseHashFields(id string, m map[string]string) domain.Document {
	return domain.Document{
		ID:       id,
		ParentID: m[fieldParentID],
		Kind:     domain.Kind(m[fieldKind]),
		Content:  m[fieldContent],
		Meta: domain.Metadata{
			Title:         m[fieldTitle],
			ArticleNumber: m[fieldArticleNumber],
			URL:           m[fieldURL],
			Date:          m[fieldDate],
			Jurisdiction:  m[fieldJurisdiction],
			Fine:          m[fieldFine],
			Currency:      m[fieldCurrency],
		},
		Vector: bytesToVector(m[fieldVector]),
	}
}

// ParseEntryFields maps search-result hash fields to a domain Document.
// Shared with the search repository so both sides agree on the layout.
func ParseEntryFields(id string, m map[string]string) domain.Document {
	return parseHashFields(id, m)
}

// ExtractDocID strips the collection key prefix from a full Redis key.
func ExtractDocID(key, collection string) string {
	prefix := keyPrefix(collection)
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return key
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(s string) []float32 {
	if s == "" || len(s)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(s)/4)
	data := []byte(s)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
