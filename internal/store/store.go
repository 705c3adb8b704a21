// Package store defines the vector-store contract consumed by the fusion
// core. The adapter normalizes backend responses into Hit exactly once, so
// nothing above this boundary inspects response shapes defensively.
package store

import (
	"context"
	"time"

	"github.com/lagunalab/cartodex/internal/domain/search/filter"
)

// Store is the vector-store facade.
type Store interface {
	// Query runs a ranked similarity search.
	Query(ctx context.Context, q *QueryRequest) ([]Hit, error)
	// Scroll pages through a collection without ranking. Hits carry Score 0.
	Scroll(ctx context.Context, q *ScrollRequest) ([]Hit, error)
	Ping(ctx context.Context) error
	Close() error
}

// QueryRequest is the input for a ranked vector search.
type QueryRequest struct {
	Collection string
	Vector     []float32
	// Using selects a named vector space; empty means the collection default.
	Using   string
	Filters filter.Filters
	Limit   int
	// ScoreThreshold discards hits below this raw similarity at the store.
	ScoreThreshold float32
	// IncludeFields projects the payload to these fields only. Empty means
	// full payload.
	IncludeFields []string
	// HNSWEf overrides the search-time ef parameter (0 = store default).
	HNSWEf int
}

// ScrollRequest is the input for non-ranked paginated retrieval.
type ScrollRequest struct {
	Collection    string
	Filters       filter.Filters
	Limit         int
	IncludeFields []string
}

// SpatialPayload is the typed geographic anchor of a hit. Absence of a
// location is modeled by a nil pointer on Hit, never by zero coordinates.
type SpatialPayload struct {
	Lat float64
	Lng float64
}

// Hit is one normalized store result. Typed fields are extracted from the
// payload at the adapter boundary; Full keeps the raw payload for passthrough.
type Hit struct {
	ID            string
	Score         float32
	Location      *SpatialPayload
	Year          int
	Content       string
	SourceDataset string
	SourceImage   string
	PixelCoords   []int
	Full          map[string]any
}

// Config holds vector-store connection settings.
type Config struct {
	Addr           string
	APIKey         string
	RequestTimeout time.Duration
}
