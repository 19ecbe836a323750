// Package llm holds the clients for the two hosted model collaborators: the
// Groq-hosted chat completion endpoint (OpenAI-compatible API) and the Gemini
// embedding endpoint. Both sit behind small interfaces so the core services
// can be tested with fakes.
package llm

import "context"

// CompletionOptions bound a single chat completion call. Temperature is fixed
// per call site; MaxTokens caps the output length.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// ChatClient performs a single-shot chat completion. No streaming.
type ChatClient interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// Embedder turns text into vectors for similarity retrieval. Repeated calls on
// identical text must return consistent vectors so retrieval is stable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
