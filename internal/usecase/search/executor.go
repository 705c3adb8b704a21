package search

import (
	"context"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lagunalab/cartodex/internal/domain/search/filter"
	"github.com/lagunalab/cartodex/internal/domain/search/result"
	"github.com/lagunalab/cartodex/internal/domain/search/source"
	"github.com/lagunalab/cartodex/internal/metrics"
	"github.com/lagunalab/cartodex/internal/store"
)

// previewLen bounds the document content preview.
const previewLen = 200

// executor is one vector-space query: embed, over-fetch, gate by the
// source's absolute floor, map hits to result items. Each executor owns the
// SourceSet it builds until the coordinator joins.
type executor struct {
	kind       source.Kind
	collection string
	// using selects a named vector space; empty means the collection default.
	using string
	// floor is the absolute raw-score minimum for this source. Empirically
	// tuned per encoder: the text encoder's scores run much higher than the
	// joint encoder's, so the document floor is stricter.
	floor float64
	// label prefixes the synthesized preview for map tiles.
	label string
	// embed resolves the query vector for this source's space. Image search
	// supplies a closure returning the shared, pre-computed image vector.
	embed func(ctx context.Context) ([]float32, error)
}

// run executes one source query. Any failure is recorded on the returned set
// and yields zero items; it never propagates, so a failing source cannot
// abort its sibling.
func (s *Service) run(
	ctx context.Context, ex executor, filters filter.Filters, limit int,
) result.SourceSet {
	start := time.Now()

	vector, err := ex.embed(ctx)
	if err != nil {
		s.observeFailure(ex.kind, "embed", err)
		return result.Empty(ex.kind, err)
	}

	hits, err := s.store.Query(ctx, &store.QueryRequest{
		Collection: ex.collection,
		Vector:     vector,
		Using:      ex.using,
		Filters:    filters,
		Limit:      limit * s.params.OverfetchFactor,
		HNSWEf:     s.params.HNSWEf,
	})
	if err != nil {
		s.observeFailure(ex.kind, "query", err)
		return result.Empty(ex.kind, err)
	}

	items := make([]result.Item, 0, len(hits))
	for _, h := range hits {
		if float64(h.Score) <= ex.floor {
			continue
		}
		items = append(items, itemFromHit(h, ex.kind, ex.label))
	}

	metrics.SourceQueriesTotal.WithLabelValues(ex.kind.String(), "success").Inc()
	metrics.SourceQueryDuration.WithLabelValues(ex.kind.String()).Observe(time.Since(start).Seconds())

	return result.SourceSet{Kind: ex.kind, Items: items}
}

func (s *Service) observeFailure(kind source.Kind, stage string, err error) {
	status := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		status = "timeout"
	}
	metrics.SourceQueriesTotal.WithLabelValues(kind.String(), status).Inc()
	s.logger.Warn("source query degraded to empty set",
		zap.String("source", kind.String()),
		zap.String("stage", stage),
		zap.Error(err),
	)
}

// itemFromHit maps a normalized store hit to a result item. Documents get a
// content preview; map tiles get a synthesized "<label> (year)" caption.
func itemFromHit(h store.Hit, kind source.Kind, label string) result.Item {
	item := result.Item{
		ID:            h.ID,
		Score:         float64(h.Score),
		Year:          h.Year,
		Kind:          kind,
		SourceDataset: h.SourceDataset,
		FullPayload:   h.Full,
	}
	if item.SourceDataset == "" {
		item.SourceDataset = h.SourceImage
	}
	if h.Location != nil {
		item.Lat = h.Location.Lat
		item.Lng = h.Location.Lng
	}

	switch kind {
	case source.Document:
		item.ContentPreview = previewOf(h.Content)
	case source.MapTile:
		year := "unknown"
		if h.Year > 0 {
			year = strconv.Itoa(h.Year)
		}
		item.ContentPreview = label + " (" + year + ")"
		item.PixelCoords = h.PixelCoords
		item.ImageSource = h.SourceImage
	}

	return item
}

// previewOf truncates document content for the list view. The cut backs up
// to a rune boundary so a multi-byte character straddling the limit is
// dropped whole rather than split into invalid UTF-8.
func previewOf(content string) string {
	if len(content) <= previewLen {
		return content
	}
	cut := previewLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
