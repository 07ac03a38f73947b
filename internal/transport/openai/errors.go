package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lexrag-io/lexrag/internal/domain"
)

// parseAPIError classifies a provider failure. Timeouts, rate limits and 5xx
// responses wrap domain.ErrTransientProvider so callers retry with backoff;
// everything else wraps domain.ErrProvider and is surfaced as-is.
func parseAPIError(stage string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s request timed out: %w", stage, domain.ErrTransientProvider)
	}

	// HTTP client timeouts surface as net errors, not context errors.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s request timed out: %w", stage, domain.ErrTransientProvider)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			stage, reqErr.HTTPStatusCode, string(reqErr.Body), wrapFor(reqErr.HTTPStatusCode))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			stage, apiErr.HTTPStatusCode, apiErr.Message, wrapFor(apiErr.HTTPStatusCode))
	}

	// Network-level failure without an HTTP status.
	return fmt.Errorf("%s request failed: %v: %w", stage, err, domain.ErrTransientProvider)
}

func wrapFor(status int) error {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return domain.ErrTransientProvider
	case status >= http.StatusInternalServerError:
		return domain.ErrTransientProvider
	default:
		return domain.ErrProvider
	}
}
