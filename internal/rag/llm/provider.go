package llm

import "context"

// Request is one generation call. Temperature 0 must give reproducible
// output; evaluation depends on it.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}
