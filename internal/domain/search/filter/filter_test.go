package filter

import (
	"errors"
	"testing"

	"github.com/lagunalab/cartodex/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestNewValid(t *testing.T) {
	f, err := New(intPtr(1500), intPtr(1800), "de_barbari", []float64{12.0, 45.0, 13.0, 46.0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.IsEmpty() {
		t.Fatal("IsEmpty() = true for populated filters")
	}
	if got := *f.YearStart(); got != 1500 {
		t.Errorf("YearStart = %d, want 1500", got)
	}
	if got := *f.YearEnd(); got != 1800 {
		t.Errorf("YearEnd = %d, want 1800", got)
	}
	if got := f.SourceTag(); got != "de_barbari" {
		t.Errorf("SourceTag = %q", got)
	}
	bbox := f.BBox()
	if bbox == nil {
		t.Fatal("BBox = nil")
	}
	if bbox.Min(0) != 12.0 || bbox.Min(1) != 45.0 || bbox.Max(0) != 13.0 || bbox.Max(1) != 46.0 {
		t.Errorf("BBox corners = (%v,%v)-(%v,%v)", bbox.Min(0), bbox.Min(1), bbox.Max(0), bbox.Max(1))
	}
}

func TestNewRejects(t *testing.T) {
	tests := []struct {
		name      string
		yearStart *int
		yearEnd   *int
		bbox      []float64
	}{
		{name: "inverted years", yearStart: intPtr(1800), yearEnd: intPtr(1500)},
		{name: "bbox too short", bbox: []float64{12.0, 45.0, 13.0}},
		{name: "bbox too long", bbox: []float64{12.0, 45.0, 13.0, 46.0, 1.0}},
		{name: "bbox empty slice", bbox: []float64{}},
		{name: "bbox inverted lon", bbox: []float64{13.0, 45.0, 12.0, 46.0}},
		{name: "bbox inverted lat", bbox: []float64{12.0, 46.0, 13.0, 45.0}},
		{name: "bbox lat out of range", bbox: []float64{12.0, -95.0, 13.0, 46.0}},
		{name: "bbox lon out of range", bbox: []float64{12.0, 45.0, 181.0, 46.0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.yearStart, tc.yearEnd, "", tc.bbox)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	f, err := New(nil, nil, "", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.IsEmpty() {
		t.Error("IsEmpty() = false for zero filters")
	}

	var zero Filters
	if !zero.IsEmpty() {
		t.Error("IsEmpty() = false for zero value")
	}

	tagged, err := New(nil, nil, "catastici", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tagged.IsEmpty() {
		t.Error("IsEmpty() = true with source tag set")
	}
}
