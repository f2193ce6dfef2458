package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the model answered with nothing but whitespace.
var ErrEmptyCompletion = errors.New("empty completion")

// Provider turns a prompt into a completion.
// Implementations must honour ctx cancellation and never retry.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}
