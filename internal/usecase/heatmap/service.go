// Package heatmap implements the reduced-fidelity spatial projection of the
// search pipeline: coordinates and a score, nothing else. Query mode is
// relevance-weighted; density mode samples raw coverage via scrolling.
package heatmap

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lagunalab/cartodex/internal/domain"
	domheat "github.com/lagunalab/cartodex/internal/domain/heatmap"
	"github.com/lagunalab/cartodex/internal/domain/search/filter"
	"github.com/lagunalab/cartodex/internal/metrics"
	"github.com/lagunalab/cartodex/internal/store"
)

// locationField is the only payload field fetched for heatmap queries.
// Tens of thousands of points times a multi-KB payload is the difference
// between a usable endpoint and an unusable one, so the projection is a
// contract, not an optimization.
var locationField = []string{"location"}

// Store is the vector-store contract for the heatmap pipeline.
type Store interface {
	Query(ctx context.Context, q *store.QueryRequest) ([]store.Hit, error)
	Scroll(ctx context.Context, q *store.ScrollRequest) ([]store.Hit, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Params is the heatmap pipeline tuning.
type Params struct {
	DocCollection string
	MapCollection string

	// DocMinScore and MapMinScore are applied at the store as raw score
	// thresholds; no normalization pass runs here (heatmap accuracy
	// tolerates the skew, latency does not tolerate the extra pass).
	DocMinScore float64
	MapMinScore float64
	// MapBoost compensates the joint encoder's lower raw magnitudes.
	MapBoost float64

	// MaxPoints and MaxBinaryPoints are hard ceilings per response mode,
	// enforced here regardless of the caller-requested limit.
	MaxPoints       int
	MaxBinaryPoints int

	Timeout time.Duration
}

// Service aggregates heatmap points across both collections.
type Service struct {
	store     Store
	textEmb   Embedder
	visionEmb Embedder
	params    Params
	logger    *zap.Logger
}

// New creates the heatmap service.
func New(st Store, textEmb, visionEmb Embedder, params Params, logger *zap.Logger) *Service {
	if params.MapBoost <= 0 {
		params.MapBoost = 1.0
	}
	if params.Timeout <= 0 {
		params.Timeout = 20 * time.Second
	}
	return &Service{store: st, textEmb: textEmb, visionEmb: visionEmb, params: params, logger: logger}
}

// Points returns heatmap samples, capped at MaxPoints. A non-empty query
// selects relevance-weighted query mode; an empty query selects density mode.
func (s *Service) Points(ctx context.Context, query string, limit int) []domheat.Point {
	return s.points(ctx, query, limit, s.params.MaxPoints)
}

// Binary returns heatmap samples encoded as fixed-width 12-byte records,
// capped at MaxBinaryPoints.
func (s *Service) Binary(ctx context.Context, query string, limit int) []byte {
	return domheat.Encode(s.points(ctx, query, limit, s.params.MaxBinaryPoints))
}

func (s *Service) points(ctx context.Context, query string, limit, ceiling int) []domheat.Point {
	if limit <= 0 || limit > ceiling {
		limit = ceiling
	}

	ctx, cancel := context.WithTimeout(ctx, s.params.Timeout)
	defer cancel()

	var points []domheat.Point
	if query == "" {
		points = s.densityPoints(ctx, limit)
	} else {
		points = s.queryPoints(ctx, query, limit)
	}

	metrics.FusedResults.WithLabelValues("heatmap").Observe(float64(len(points)))
	return points
}

// queryPoints runs both relevance queries concurrently with the
// location-only payload projection. Per-source failures degrade to that
// source contributing nothing.
func (s *Service) queryPoints(ctx context.Context, query string, limit int) []domheat.Point {
	var (
		wg       sync.WaitGroup
		docHits  []store.Hit
		mapHits  []store.Hit
		perSpace = limit / 2
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		docHits = s.querySpace(ctx, query, s.textEmb, &store.QueryRequest{
			Collection:     s.params.DocCollection,
			Using:          "text_vector",
			Limit:          perSpace,
			ScoreThreshold: float32(s.params.DocMinScore),
			IncludeFields:  locationField,
		})
	}()
	go func() {
		defer wg.Done()
		mapHits = s.querySpace(ctx, query, s.visionEmb, &store.QueryRequest{
			Collection:     s.params.MapCollection,
			Limit:          perSpace,
			ScoreThreshold: float32(s.params.MapMinScore),
			IncludeFields:  locationField,
		})
	}()
	wg.Wait()

	points := make([]domheat.Point, 0, len(docHits)+len(mapHits))
	points = appendPoints(points, docHits, 1.0)
	points = appendPoints(points, mapHits, s.params.MapBoost)
	return points
}

// querySpace embeds and queries one space, returning nil on any failure.
func (s *Service) querySpace(
	ctx context.Context, query string, emb Embedder, req *store.QueryRequest,
) []store.Hit {
	res, err := emb.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("heatmap embed failed",
			zap.String("collection", req.Collection), zap.Error(err))
		return nil
	}
	req.Vector = res.Embedding

	hits, err := s.store.Query(ctx, req)
	if err != nil {
		s.logger.Warn("heatmap query failed",
			zap.String("collection", req.Collection), zap.Error(err))
		return nil
	}
	return hits
}

// densityPoints samples both collections without ranking. Every point gets a
// constant score of 1.0: the signal is data coverage, not relevance.
func (s *Service) densityPoints(ctx context.Context, limit int) []domheat.Point {
	var (
		wg       sync.WaitGroup
		docHits  []store.Hit
		mapHits  []store.Hit
		perSpace = limit / 2
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		docHits = s.scrollSpace(ctx, s.params.DocCollection, perSpace)
	}()
	go func() {
		defer wg.Done()
		mapHits = s.scrollSpace(ctx, s.params.MapCollection, perSpace)
	}()
	wg.Wait()

	points := make([]domheat.Point, 0, len(docHits)+len(mapHits))
	for _, h := range append(docHits, mapHits...) {
		if h.Location == nil {
			continue
		}
		points = append(points, domheat.Point{Lat: h.Location.Lat, Lng: h.Location.Lng, Score: 1.0})
	}
	return points
}

func (s *Service) scrollSpace(ctx context.Context, collection string, limit int) []store.Hit {
	hits, err := s.store.Scroll(ctx, &store.ScrollRequest{
		Collection:    collection,
		Filters:       filter.Filters{},
		Limit:         limit,
		IncludeFields: locationField,
	})
	if err != nil {
		s.logger.Warn("heatmap scroll failed",
			zap.String("collection", collection), zap.Error(err))
		return nil
	}
	return hits
}

func appendPoints(points []domheat.Point, hits []store.Hit, boost float64) []domheat.Point {
	for _, h := range hits {
		if h.Location == nil {
			continue
		}
		points = append(points, domheat.Point{
			Lat:   h.Location.Lat,
			Lng:   h.Location.Lng,
			Score: float32(float64(h.Score) * boost),
		})
	}
	return points
}
