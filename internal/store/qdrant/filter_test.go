package qdrant

import (
	"testing"

	"github.com/lagunalab/cartodex/internal/domain/search/filter"
)

func intPtr(v int) *int { return &v }

func mustFilters(t *testing.T, yearStart, yearEnd *int, tag string, bbox []float64) filter.Filters {
	t.Helper()
	f, err := filter.New(yearStart, yearEnd, tag, bbox)
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	return f
}

func TestTranslateFiltersEmpty(t *testing.T) {
	if got := translateFilters(filter.Filters{}); got != nil {
		t.Fatalf("translateFilters(empty) = %+v, want nil", got)
	}
}

func TestTranslateFiltersYearRange(t *testing.T) {
	f := mustFilters(t, intPtr(1500), intPtr(1797), "", nil)

	q := translateFilters(f)
	if q == nil {
		t.Fatal("translateFilters returned nil")
	}
	if len(q.Must) != 2 {
		t.Fatalf("len(Must) = %d, want 2", len(q.Must))
	}

	gte := q.Must[0].GetField()
	if gte == nil || gte.Key != fieldYear || gte.Range == nil || gte.Range.Gte == nil || *gte.Range.Gte != 1500 {
		t.Errorf("first condition = %+v, want year gte 1500", gte)
	}
	lte := q.Must[1].GetField()
	if lte == nil || lte.Key != fieldYear || lte.Range == nil || lte.Range.Lte == nil || *lte.Range.Lte != 1797 {
		t.Errorf("second condition = %+v, want year lte 1797", lte)
	}
}

func TestTranslateFiltersSourceTag(t *testing.T) {
	f := mustFilters(t, nil, nil, "de_barbari_1500", nil)

	q := translateFilters(f)
	if q == nil || len(q.Must) != 1 {
		t.Fatalf("translateFilters = %+v, want one condition", q)
	}
	fc := q.Must[0].GetField()
	if fc == nil || fc.Key != fieldSourceImage {
		t.Fatalf("condition key = %+v, want %q", fc, fieldSourceImage)
	}
	if got := fc.Match.GetKeyword(); got != "de_barbari_1500" {
		t.Errorf("keyword = %q, want de_barbari_1500", got)
	}
}

func TestTranslateFiltersBBoxCorners(t *testing.T) {
	// [minLon, minLat, maxLon, maxLat]
	f := mustFilters(t, nil, nil, "", []float64{12.0, 45.0, 13.0, 46.0})

	q := translateFilters(f)
	if q == nil || len(q.Must) != 1 {
		t.Fatalf("translateFilters = %+v, want one condition", q)
	}
	fc := q.Must[0].GetField()
	if fc == nil || fc.Key != fieldLocation || fc.GeoBoundingBox == nil {
		t.Fatalf("condition = %+v, want location geo box", fc)
	}
	box := fc.GeoBoundingBox
	if box.TopLeft.Lon != 12.0 || box.TopLeft.Lat != 46.0 {
		t.Errorf("TopLeft = (%v, %v), want lon 12 lat 46", box.TopLeft.Lon, box.TopLeft.Lat)
	}
	if box.BottomRight.Lon != 13.0 || box.BottomRight.Lat != 45.0 {
		t.Errorf("BottomRight = (%v, %v), want lon 13 lat 45", box.BottomRight.Lon, box.BottomRight.Lat)
	}
}

func TestTranslateFiltersConjunction(t *testing.T) {
	f := mustFilters(t, intPtr(1600), nil, "catastici", []float64{12.2, 45.3, 12.5, 45.5})

	q := translateFilters(f)
	if q == nil {
		t.Fatal("translateFilters returned nil")
	}
	if len(q.Must) != 3 {
		t.Fatalf("len(Must) = %d, want 3", len(q.Must))
	}
	var haveYear, haveTag, haveBox bool
	for _, c := range q.Must {
		fc := c.GetField()
		if fc == nil {
			t.Fatalf("non-field condition: %+v", c)
		}
		switch fc.Key {
		case fieldYear:
			haveYear = true
		case fieldSourceImage:
			haveTag = true
		case fieldLocation:
			haveBox = true
		}
	}
	if !haveYear || !haveTag || !haveBox {
		t.Errorf("conditions year=%v tag=%v box=%v, want all true", haveYear, haveTag, haveBox)
	}
}
