package ingest

import "strings"

// splitText cuts text into chunks of at most size characters with overlap
// characters carried over between consecutive chunks. Cut points prefer a
// paragraph break, then a sentence end, so chunks stay readable on their own.
func splitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findCut(text, start, end)

		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// findCut picks the cut position inside (start, end]. A paragraph break in
// the second half of the window wins, then a sentence end, otherwise the
// window edge.
func findCut(text string, start, end int) int {
	window := text[start:end]
	half := len(window) / 2

	if i := strings.LastIndex(window, "\n\n"); i > half {
		return start + i + 2
	}
	if i := strings.LastIndex(window, ". "); i > half {
		return start + i + 2
	}
	if i := strings.LastIndex(window, "\n"); i > half {
		return start + i + 1
	}
	if i := strings.LastIndex(window, " "); i > half {
		return start + i + 1
	}
	return end
}
