package answer

import "context"

// Generator produces a chat completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
