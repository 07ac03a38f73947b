// Package route decides which collections an incoming query should search.
package route

import (
	"strings"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// Decision is the routing outcome.
type Decision string

const (
	// Articles searches the GDPR article collection only.
	Articles Decision = "articles"
	// Cases searches the enforcement case collection only.
	Cases Decision = "cases"
	// Both searches both collections and merges results by score.
	Both Decision = "both"
)

// Collections returns the collection names a decision targets.
func (d Decision) Collections() []string {
	switch d {
	case Articles:
		return []string{domain.CollectionArticles}
	case Cases:
		return []string{domain.CollectionCases}
	default:
		return domain.Collections()
	}
}

// caseVocabulary marks case-law intent.
var caseVocabulary = wordSet(
	"case", "cases", "decision", "decisions", "ruling", "rulings",
	"fine", "fined", "fines", "penalty", "penalties", "sanction", "sanctions",
	"dpa", "noyb", "authority", "authorities", "court", "courts",
	"enforcement", "enforced", "violation", "violations", "complaint",
	"complaints", "judgment", "verdict",
)

// statutoryVocabulary marks statutory intent.
var statutoryVocabulary = wordSet(
	"article", "articles", "gdpr", "regulation", "provision", "provisions",
	"right", "rights", "obligation", "obligations", "controller", "processor",
	"consent", "portability", "erasure", "rectification", "access",
	"lawful", "lawfulness", "processing", "transparency", "dpo",
	"pseudonymisation", "recital",
)

// Router classifies query intent with lexical scoring. Pure function of the
// query text: the same query always yields the same decision.
type Router struct{}

// New creates a router.
func New() *Router {
	return &Router{}
}

// Route counts case-law and statutory vocabulary occurrences in the query.
// The higher score wins; ties, including two zero scores, route to both
// collections.
func (r *Router) Route(query string) Decision {
	var caseScore, statScore int
	for _, tok := range tokenize(query) {
		if caseVocabulary[tok] {
			caseScore++
		}
		if statutoryVocabulary[tok] {
			statScore++
		}
	}

	switch {
	case caseScore > statScore:
		return Cases
	case statScore > caseScore:
		return Articles
	default:
		return Both
	}
}

func tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
