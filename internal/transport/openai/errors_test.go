package openai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lexrag-io/lexrag/internal/domain"
)

func apiErr(status int) error {
	return &openai.APIError{HTTPStatusCode: status, Message: "boom"}
}

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline exceeded", context.DeadlineExceeded, domain.ErrTransientProvider},
		{"canceled", context.Canceled, domain.ErrTransientProvider},
		{"rate limited", apiErr(429), domain.ErrTransientProvider},
		{"request timeout", apiErr(408), domain.ErrTransientProvider},
		{"server error", apiErr(500), domain.ErrTransientProvider},
		{"bad gateway", apiErr(502), domain.ErrTransientProvider},
		{"unauthorized", apiErr(401), domain.ErrProvider},
		{"bad request", apiErr(400), domain.ErrProvider},
		{"not found", apiErr(404), domain.ErrProvider},
		{"network failure", errors.New("dial tcp: connection refused"), domain.ErrTransientProvider},
		{
			"wrapped deadline",
			fmt.Errorf("do request: %w", context.DeadlineExceeded),
			domain.ErrTransientProvider,
		},
		{
			"request error 503",
			&openai.RequestError{HTTPStatusCode: 503, Body: []byte("unavailable")},
			domain.ErrTransientProvider,
		},
		{
			"request error 403",
			&openai.RequestError{HTTPStatusCode: 403, Body: []byte("forbidden")},
			domain.ErrProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAPIError("embedding", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("parseAPIError(%v) = %v, want wrapped %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseAPIError_KeepsStage(t *testing.T) {
	got := parseAPIError("generation", apiErr(500))
	if got == nil || got.Error() == "" {
		t.Fatal("expected an error")
	}
	if want := "generation API error 500"; !errors.Is(got, domain.ErrTransientProvider) ||
		len(got.Error()) < len(want) {
		t.Errorf("unexpected error text: %v", got)
	}
}
