// Package summarizer turns weekly sales statistics into a short narrative written by a language
// model
package summarizer

import (
	"context"
	"errors"
)

var (
	ErrNoAPIKey      = errors.New("no summarizer api key")
	ErrEmptyResponse = errors.New("empty summary response")
	ErrEmptyPrompt   = errors.New("empty prompt")
)

// Summarizer produces narrative text from a prompt
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// SummarizerFunc adapts a function into a Summarizer
type SummarizerFunc func(ctx context.Context, prompt string) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
