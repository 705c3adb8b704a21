// Package search implements the hybrid retrieval fusion pipeline: concurrent
// fan-out to the document and map collections, per-source absolute score
// gating, Z-score standardization, and merged ranking.
package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lagunalab/cartodex/internal/domain/search/filter"
	"github.com/lagunalab/cartodex/internal/domain/search/request"
	"github.com/lagunalab/cartodex/internal/domain/search/result"
	"github.com/lagunalab/cartodex/internal/domain/search/source"
	"github.com/lagunalab/cartodex/internal/metrics"
)

// Named vector spaces of the document collection. The map collection's
// default vector is the visual embedding.
const (
	docTextVector   = "text_vector"
	docVisualVector = "pe_vector"
)

// Params is the fusion pipeline tuning. Floors and the relative threshold
// are empirically tuned configuration, not correctness invariants.
type Params struct {
	DocCollection string
	MapCollection string

	DocMinScore      float64
	MapMinScore      float64
	DocImageMinScore float64
	MapImageMinScore float64

	OverfetchFactor int
	Timeout         time.Duration
	HNSWEf          int
}

// Service coordinates the fan-out search across both collections.
// It is safe for concurrent use: all per-request state lives in the request's
// own SourceSets, and the shared store and embedder handles are read-only.
type Service struct {
	store     Store
	textEmb   Embedder
	visionEmb Embedder
	imageEmb  ImageEmbedder
	params    Params
	logger    *zap.Logger
}

// New creates the fusion search service. textEmb is the semantic-text
// encoder (document space), visionEmb and imageEmb the joint visual/text
// encoder (map space).
func New(
	st Store, textEmb, visionEmb Embedder, imageEmb ImageEmbedder,
	params Params, logger *zap.Logger,
) *Service {
	if params.OverfetchFactor < 1 {
		params.OverfetchFactor = 1
	}
	if params.Timeout <= 0 {
		params.Timeout = 15 * time.Second
	}
	return &Service{
		store:     st,
		textEmb:   textEmb,
		visionEmb: visionEmb,
		imageEmb:  imageEmb,
		params:    params,
		logger:    logger,
	}
}

// SearchText runs the text query against both collections concurrently and
// fuses the gated, normalized results. A failing or timed-out source
// degrades to an empty contribution; an empty answer is valid, never an
// error.
func (s *Service) SearchText(ctx context.Context, req *request.Request) []result.Item {
	execs := []executor{
		{
			kind:       source.Document,
			collection: s.params.DocCollection,
			using:      docTextVector,
			floor:      s.params.DocMinScore,
			embed: func(ctx context.Context) ([]float32, error) {
				res, err := s.textEmb.Embed(ctx, req.Query())
				return res.Embedding, err
			},
		},
		{
			kind:       source.MapTile,
			collection: s.params.MapCollection,
			floor:      s.params.MapMinScore,
			label:      "Fragment",
			embed: func(ctx context.Context) ([]float32, error) {
				res, err := s.visionEmb.Embed(ctx, req.Query())
				return res.Embedding, err
			},
		},
	}

	sets := s.fanOut(ctx, execs, req.Filters(), req.Limit())
	fused := s.fuseSets(sets, req.Threshold(), req.Limit())
	metrics.FusedResults.WithLabelValues("text").Observe(float64(len(fused)))
	return fused
}

// SearchImage embeds the uploaded image once in the joint space, then fans
// the shared vector out to both collections (image→map on the default visual
// vector, image→doc on the document collection's visual-alignment vector).
func (s *Service) SearchImage(
	ctx context.Context, image []byte, limit int, threshold float64,
) []result.Item {
	if limit <= 0 {
		limit = request.DefaultLimit
	}
	if limit > request.MaxLimit {
		limit = request.MaxLimit
	}

	embedImage := s.sharedImageVector(image)

	execs := []executor{
		{
			kind:       source.MapTile,
			collection: s.params.MapCollection,
			floor:      s.params.MapImageMinScore,
			label:      "Visual Match",
			embed:      embedImage,
		},
		{
			kind:       source.Document,
			collection: s.params.DocCollection,
			using:      docVisualVector,
			floor:      s.params.DocImageMinScore,
			embed:      embedImage,
		},
	}

	sets := s.fanOut(ctx, execs, filter.Filters{}, limit)
	fused := s.fuseSets(sets, threshold, limit)
	metrics.FusedResults.WithLabelValues("image").Observe(float64(len(fused)))
	return fused
}

// sharedImageVector embeds the image at most once and hands the same vector
// to every executor. The two executors race for the first call; sync.Once
// keeps the encoder round trip single.
func (s *Service) sharedImageVector(image []byte) func(ctx context.Context) ([]float32, error) {
	var (
		once sync.Once
		vec  []float32
		err  error
	)
	return func(ctx context.Context) ([]float32, error) {
		once.Do(func() {
			var res, embErr = s.imageEmb.EmbedImage(ctx, image)
			vec, err = res.Embedding, embErr
		})
		return vec, err
	}
}

// fanOut launches one executor goroutine per source and joins them under the
// per-request deadline. Each goroutine writes only its own slot; relative
// completion order is irrelevant.
func (s *Service) fanOut(
	ctx context.Context, execs []executor, filters filter.Filters, limit int,
) []result.SourceSet {
	ctx, cancel := context.WithTimeout(ctx, s.params.Timeout)
	defer cancel()

	sets := make([]result.SourceSet, len(execs))
	var wg sync.WaitGroup
	for i, ex := range execs {
		wg.Add(1)
		go func(i int, ex executor) {
			defer wg.Done()
			sets[i] = s.run(ctx, ex, filters, limit)
		}(i, ex)
	}
	wg.Wait()
	return sets
}

// fuseSets normalizes each source independently, then merges. Normalization
// mutates each set's private slice before the merge takes ownership.
func (s *Service) fuseSets(
	sets []result.SourceSet, threshold float64, limit int,
) []result.Item {
	for i := range sets {
		normalizeScores(sets[i].Items)
	}
	return fuse(sets, threshold, limit)
}
