package domain

import "context"

// EmbeddingResult is a vector plus the token usage it cost to produce.
// Cached results report zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Implemented by the OpenAI transport and by the
// caching decorator wrapped around it.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}
