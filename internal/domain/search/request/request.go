// Package request holds the validated inbound search query.
package request

import (
	"fmt"

	"github.com/lagunalab/cartodex/internal/domain"
	"github.com/lagunalab/cartodex/internal/domain/search/filter"
)

// Search parameter limits.
const (
	MaxQueryLength = 4096
	DefaultLimit   = 20
	MaxLimit       = 100

	// DefaultThreshold is the default relative (post-normalization) cutoff.
	DefaultThreshold = 0.2
)

// Request is a validated text search query.
type Request struct {
	query     string
	limit     int
	threshold float64
	filters   filter.Filters
}

// New validates and normalizes search parameters. Limit is clamped to
// [1, MaxLimit]; a zero limit takes the default.
func New(query string, limit int, threshold float64, filters filter.Filters) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidInput, MaxQueryLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{query: query, limit: limit, threshold: threshold, filters: filters}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Threshold returns the relative score cutoff applied after normalization.
func (r *Request) Threshold() float64 { return r.threshold }

// Filters returns the pre-filter conditions.
func (r *Request) Filters() filter.Filters { return r.filters }
