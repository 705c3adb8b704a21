package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// One instance exists per vector space: the semantic-text encoder for the
// document space, the joint visual/text encoder for the map space.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
