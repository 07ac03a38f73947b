package chi

import (
	"github.com/lexrag-io/lexrag/internal/domain"
	askuc "github.com/lexrag-io/lexrag/internal/usecase/ask"
)

// errorCode is the machine-readable error identifier in error responses.
type errorCode string

const (
	codeBadRequest          errorCode = "bad_request"
	codeEmptyQuery          errorCode = "empty_query"
	codeCollectionUnknown   errorCode = "collection_unknown"
	codeDocumentNotFound    errorCode = "document_not_found"
	codeVectorDimMismatch   errorCode = "vector_dim_mismatch"
	codeMalformedGeneration errorCode = "malformed_generation"
	codeProviderError       errorCode = "provider_error"
	codeProviderUnavailable errorCode = "provider_unavailable"
	codeIndexUnavailable    errorCode = "index_unavailable"
	codeInternalError       errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type askRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection,omitempty"`
	TopK       int    `json:"top_k,omitempty"`
}

type sourceItem struct {
	ID            string  `json:"id"`
	Collection    string  `json:"collection"`
	Title         string  `json:"title"`
	URL           string  `json:"url,omitempty"`
	ArticleNumber string  `json:"article_number,omitempty"`
	Score         float64 `json:"score"`
}

type askResponse struct {
	Answer      string            `json:"answer"`
	Summary     string            `json:"summary,omitempty"`
	Citations   []domain.Citation `json:"citations"`
	Sources     []sourceItem      `json:"sources"`
	Collections []string          `json:"collections"`
}

func askResultToResponse(res askuc.Result) askResponse {
	sources := make([]sourceItem, len(res.Hits))
	for i, h := range res.Hits {
		sources[i] = sourceItem{
			ID:            h.Doc.ID,
			Collection:    domain.CollectionFor(h.Doc.Kind),
			Title:         h.Doc.Meta.Title,
			URL:           h.Doc.Meta.URL,
			ArticleNumber: h.Doc.Meta.ArticleNumber,
			Score:         h.Score,
		}
	}
	return askResponse{
		Answer:      res.Answer.Text,
		Summary:     res.Answer.Summary,
		Citations:   res.Answer.Citations,
		Sources:     sources,
		Collections: res.Collections,
	}
}

type recordItem struct {
	ID            string `json:"id,omitempty"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Text          string `json:"text"`
	ArticleNumber string `json:"article_number,omitempty"`
	URL           string `json:"url,omitempty"`
	Date          string `json:"date,omitempty"`
	Jurisdiction  string `json:"jurisdiction,omitempty"`
	Fine          string `json:"fine,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

type ingestRequest struct {
	Records []recordItem `json:"records"`
}

func recordFromItem(item recordItem) domain.Record {
	return domain.Record{
		ID:            item.ID,
		Kind:          domain.Kind(item.Type),
		Title:         item.Title,
		Text:          item.Text,
		ArticleNumber: item.ArticleNumber,
		URL:           item.URL,
		Date:          item.Date,
		Jurisdiction:  item.Jurisdiction,
		Fine:          item.Fine,
		Currency:      item.Currency,
	}
}

type statsResponse struct {
	Collection string `json:"collection"`
	Documents  int    `json:"documents"`
}

// documentResponse omits the embedding vector, which is internal.
type documentResponse struct {
	ID            string `json:"id"`
	Collection    string `json:"collection"`
	ParentID      string `json:"parent_id"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	URL           string `json:"url,omitempty"`
	ArticleNumber string `json:"article_number,omitempty"`
	Date          string `json:"date,omitempty"`
	Jurisdiction  string `json:"jurisdiction,omitempty"`
	Fine          string `json:"fine,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

func documentToResponse(collection string, doc domain.Document) documentResponse {
	return documentResponse{
		ID:            doc.ID,
		Collection:    collection,
		ParentID:      doc.ParentID,
		Title:         doc.Meta.Title,
		Content:       doc.Content,
		URL:           doc.Meta.URL,
		ArticleNumber: doc.Meta.ArticleNumber,
		Date:          doc.Meta.Date,
		Jurisdiction:  doc.Meta.Jurisdiction,
		Fine:          doc.Meta.Fine,
		Currency:      doc.Meta.Currency,
	}
}
