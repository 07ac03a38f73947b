package answer

import (
	"fmt"
	"strings"

	"github.com/lexrag-io/lexrag/internal/domain"
)

const systemPrompt = `You are an expert GDPR legal assistant. You answer questions ` +
	`strictly from the numbered sources supplied in the user message. ` +
	`Cite article numbers explicitly (e.g. "According to Article 15 GDPR...") ` +
	`and be precise about which provisions apply. ` +
	`Respond with a single JSON object and nothing else, using this schema: ` +
	`{"answer": string, "summary": string, "citations": [{"source": string}]}. ` +
	`Each citation's "source" must be one of the supplied source labels (S1, S2, ...). ` +
	`Never cite a source that is not in the list. ` +
	`If the sources do not answer the question, say so in "answer" and return an empty citations array.`

// sourceLabel builds the enumeration label for source i (0-based).
func sourceLabel(i int) string {
	return fmt.Sprintf("S%d", i+1)
}

// buildUserPrompt enumerates the retrieved documents as labeled sources and
// appends the question. The model can only cite from this enumeration, which
// is what keeps citations traceable to the retrieval result.
func buildUserPrompt(query string, hits []domain.Hit) string {
	var b strings.Builder

	b.WriteString("SOURCES:\n")
	for i, h := range hits {
		fmt.Fprintf(&b, "--- [%s] %s ---\n", sourceLabel(i), h.Doc.Meta.Title)
		if h.Doc.Meta.ArticleNumber != "" {
			fmt.Fprintf(&b, "Article: %s\n", h.Doc.Meta.ArticleNumber)
		}
		if h.Doc.Meta.Jurisdiction != "" {
			fmt.Fprintf(&b, "Jurisdiction: %s\n", h.Doc.Meta.Jurisdiction)
		}
		if h.Doc.Meta.URL != "" {
			fmt.Fprintf(&b, "URL: %s\n", h.Doc.Meta.URL)
		}
		b.WriteString(h.Doc.Content)
		b.WriteString("\n\n")
	}

	b.WriteString("QUESTION: ")
	b.WriteString(query)

	return b.String()
}
