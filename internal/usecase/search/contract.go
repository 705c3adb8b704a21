package search

import (
	"context"

	"github.com/lagunalab/cartodex/internal/domain"
	"github.com/lagunalab/cartodex/internal/store"
)

// Store is the vector-store contract consumed by the fusion pipeline.
type Store interface {
	Query(ctx context.Context, q *store.QueryRequest) ([]store.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ImageEmbedder vectorizes image bytes in the joint visual/text space.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error)
}
