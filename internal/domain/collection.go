package domain

// Collection names, one per document kind.
const (
	CollectionArticles = "articles"
	CollectionCases    = "cases"
)

// CollectionFor maps a document kind to its collection name.
func CollectionFor(k Kind) string {
	if k == KindCase {
		return CollectionCases
	}
	return CollectionArticles
}

// Collections returns all collection names in a fixed order.
func Collections() []string {
	return []string{CollectionArticles, CollectionCases}
}

// KnownCollection reports whether name is a collection this service owns.
func KnownCollection(name string) bool {
	return name == CollectionArticles || name == CollectionCases
}
