// Package llm provides remote model inference for filing question answering.
package llm

import (
	"context"
)

// Usage carries token counters reported by the inference service.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Options tunes a single invocation.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Completion is a successful raw model response.
type Completion struct {
	Text  string
	Usage *Usage
}

// Provider is the interface all inference providers implement.
type Provider interface {
	Invoke(ctx context.Context, prompt string, opts Options) (*Completion, error)
	ModelID() string
}
