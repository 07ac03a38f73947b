package domain

import "context"

// Generator produces a chat completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Citation points back to a document that was part of the retrieval result.
type Citation struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	ArticleNumber string `json:"article_number,omitempty"`
}

// Answer is a synthesized, citation-grounded response.
// Every citation references a document ID from the retrieval result the
// synthesizer was given.
type Answer struct {
	Text      string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Summary   string     `json:"summary"`
}
