package answer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// generationPayload is the JSON structure the model is instructed to return.
type generationPayload struct {
	Answer    string `json:"answer"`
	Summary   string `json:"summary"`
	Citations []struct {
		Source string `json:"source"`
	} `json:"citations"`
}

// parseGeneration decodes the model output and resolves source labels back to
// the documents of the retrieval result. Any label outside the enumeration is
// a contract violation and fails with ErrMalformedGeneration.
func parseGeneration(raw string, hits []domain.Hit) (domain.Answer, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return domain.Answer{}, err
	}
	if payload.Answer == "" {
		return domain.Answer{}, fmt.Errorf("missing answer field: %w", domain.ErrMalformedGeneration)
	}

	citations := make([]domain.Citation, 0, len(payload.Citations))
	seen := make(map[int]bool)

	for _, c := range payload.Citations {
		idx, err := resolveSourceLabel(c.Source, len(hits))
		if err != nil {
			return domain.Answer{}, err
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true

		doc := hits[idx].Doc
		citations = append(citations, domain.Citation{
			ID:            doc.ID,
			Title:         doc.Meta.Title,
			URL:           doc.Meta.URL,
			ArticleNumber: doc.Meta.ArticleNumber,
		})
	}

	return domain.Answer{
		Text:      payload.Answer,
		Citations: citations,
		Summary:   payload.Summary,
	}, nil
}

// decodePayload unmarshals the model output, tolerating a fenced code block
// around the JSON object.
func decodePayload(raw string) (generationPayload, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload generationPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return generationPayload{}, fmt.Errorf(
			"decode generation output: %v: %w", err, domain.ErrMalformedGeneration)
	}
	return payload, nil
}

// resolveSourceLabel maps "S3" (or "[S3]") to the 0-based hit index.
func resolveSourceLabel(label string, n int) (int, error) {
	s := strings.TrimSpace(label)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.ToUpper(s)

	if !strings.HasPrefix(s, "S") {
		return 0, fmt.Errorf("citation %q is not a source label: %w", label, domain.ErrMalformedGeneration)
	}

	num, err := strconv.Atoi(s[1:])
	if err != nil || num < 1 || num > n {
		return 0, fmt.Errorf("citation %q is outside the source list: %w", label, domain.ErrMalformedGeneration)
	}
	return num - 1, nil
}
