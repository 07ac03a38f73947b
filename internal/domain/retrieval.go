package domain

// Hit is a single retrieval hit.
type Hit struct {
	Doc   Document
	Score float64 // cosine similarity in [0,1]
}

// RetrievalResult is an ordered sequence of hits, length <= k,
// sorted by non-increasing similarity. Recreated per query, never persisted.
type RetrievalResult struct {
	Query string
	Hits  []Hit
}

// Empty reports whether no document cleared the similarity threshold.
// An empty result is a valid outcome, not an error.
func (r RetrievalResult) Empty() bool {
	return len(r.Hits) == 0
}
