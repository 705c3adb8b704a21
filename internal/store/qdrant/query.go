package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/lagunalab/cartodex/internal/domain"
	"github.com/lagunalab/cartodex/internal/store"
)

// Query implements store.Store.
func (s *Store) Query(ctx context.Context, q *store.QueryRequest) ([]store.Hit, error) {
	limit := uint64(q.Limit)
	req := &qdrant.QueryPoints{
		CollectionName: q.Collection,
		Query:          qdrant.NewQuery(q.Vector...),
		Filter:         translateFilters(q.Filters),
		Limit:          &limit,
		WithPayload:    payloadSelector(q.IncludeFields),
	}
	if q.Using != "" {
		using := q.Using
		req.Using = &using
	}
	if q.ScoreThreshold > 0 {
		threshold := q.ScoreThreshold
		req.ScoreThreshold = &threshold
	}
	if q.HNSWEf > 0 {
		ef := uint64(q.HNSWEf)
		req.Params = &qdrant.SearchParams{HnswEf: &ef}
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", domain.ErrStoreUnavailable, q.Collection, err)
	}

	hits := make([]store.Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, newHit(p.Id, p.Score, p.Payload))
	}
	return hits, nil
}

// Scroll implements store.Store. Returned hits carry Score 0.
func (s *Store) Scroll(ctx context.Context, q *store.ScrollRequest) ([]store.Hit, error) {
	limit := uint32(q.Limit)
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.Collection,
		Filter:         translateFilters(q.Filters),
		Limit:          &limit,
		WithPayload:    payloadSelector(q.IncludeFields),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scroll %s: %w", domain.ErrStoreUnavailable, q.Collection, err)
	}

	hits := make([]store.Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, newHit(p.Id, 0, p.Payload))
	}
	return hits, nil
}

func payloadSelector(includeFields []string) *qdrant.WithPayloadSelector {
	if len(includeFields) == 0 {
		return qdrant.NewWithPayload(true)
	}
	return qdrant.NewWithPayloadInclude(includeFields...)
}
