// Package filter holds the declarative search predicate: an optional year
// range, source tag, and geographic bounding box. Translation to the backing
// store's native filter happens at the store adapter boundary.
package filter

import (
	"fmt"

	"github.com/twpayne/go-geom"

	"github.com/lagunalab/cartodex/internal/domain"
)

// BBoxLen is the required element count of a geo bounding box:
// [minLon, minLat, maxLon, maxLat].
const BBoxLen = 4

// Filters is a validated conjunction of optional search conditions.
// The zero value matches everything.
type Filters struct {
	yearStart *int
	yearEnd   *int
	sourceTag string
	bbox      *geom.Bounds
}

// New validates and creates Filters. A bounding box must have exactly four
// elements in [minLon, minLat, maxLon, maxLat] order; partial boxes are
// rejected rather than ignored.
func New(yearStart, yearEnd *int, sourceTag string, bbox []float64) (Filters, error) {
	if yearStart != nil && yearEnd != nil && *yearStart > *yearEnd {
		return Filters{}, fmt.Errorf("%w: year_start %d after year_end %d", domain.ErrInvalidInput, *yearStart, *yearEnd)
	}
	f := Filters{yearStart: yearStart, yearEnd: yearEnd, sourceTag: sourceTag}
	if bbox == nil {
		return f, nil
	}
	if len(bbox) != BBoxLen {
		return Filters{}, fmt.Errorf("%w: geo_bbox must have exactly %d elements, got %d", domain.ErrInvalidInput, BBoxLen, len(bbox))
	}
	minLon, minLat, maxLon, maxLat := bbox[0], bbox[1], bbox[2], bbox[3]
	if minLon > maxLon || minLat > maxLat {
		return Filters{}, fmt.Errorf("%w: geo_bbox min corner exceeds max corner", domain.ErrInvalidInput)
	}
	if minLat < -90 || maxLat > 90 || minLon < -180 || maxLon > 180 {
		return Filters{}, fmt.Errorf("%w: geo_bbox coordinates out of range", domain.ErrInvalidInput)
	}
	f.bbox = geom.NewBounds(geom.XY).Set(minLon, minLat, maxLon, maxLat)
	return f, nil
}

// YearStart returns the inclusive lower year bound, or nil.
func (f Filters) YearStart() *int { return f.yearStart }

// YearEnd returns the inclusive upper year bound, or nil.
func (f Filters) YearEnd() *int { return f.yearEnd }

// SourceTag returns the exact-match source tag, or "".
func (f Filters) SourceTag() string { return f.sourceTag }

// BBox returns the geographic bounding box in lon/lat axis order, or nil.
func (f Filters) BBox() *geom.Bounds { return f.bbox }

// IsEmpty reports whether the filters produce no conditions.
func (f Filters) IsEmpty() bool {
	return f.yearStart == nil && f.yearEnd == nil && f.sourceTag == "" && f.bbox == nil
}
