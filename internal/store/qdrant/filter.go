package qdrant

import (
	"github.com/qdrant/go-client/qdrant"

	"github.com/lagunalab/cartodex/internal/domain/search/filter"
)

// Payload field keys shared by both collections.
const (
	fieldYear        = "year"
	fieldLocation    = "location"
	fieldSourceImage = "source_image"
)

// translateFilters builds a must-conjunction Qdrant filter from the
// declarative filters. Returns nil when no conditions apply.
func translateFilters(f filter.Filters) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}

	var conditions []*qdrant.Condition

	if f.YearStart() != nil {
		gte := float64(*f.YearStart())
		conditions = append(conditions, fieldCondition(&qdrant.FieldCondition{
			Key:   fieldYear,
			Range: &qdrant.Range{Gte: &gte},
		}))
	}
	if f.YearEnd() != nil {
		lte := float64(*f.YearEnd())
		conditions = append(conditions, fieldCondition(&qdrant.FieldCondition{
			Key:   fieldYear,
			Range: &qdrant.Range{Lte: &lte},
		}))
	}
	if f.SourceTag() != "" {
		conditions = append(conditions, fieldCondition(&qdrant.FieldCondition{
			Key: fieldSourceImage,
			Match: &qdrant.Match{
				MatchValue: &qdrant.Match_Keyword{Keyword: f.SourceTag()},
			},
		}))
	}
	if bbox := f.BBox(); bbox != nil {
		// Bounds are lon/lat axis order. Qdrant wants explicit corners:
		// top-left is min lon / max lat, bottom-right is max lon / min lat.
		conditions = append(conditions, fieldCondition(&qdrant.FieldCondition{
			Key: fieldLocation,
			GeoBoundingBox: &qdrant.GeoBoundingBox{
				TopLeft:     &qdrant.GeoPoint{Lon: bbox.Min(0), Lat: bbox.Max(1)},
				BottomRight: &qdrant.GeoPoint{Lon: bbox.Max(0), Lat: bbox.Min(1)},
			},
		}))
	}

	if len(conditions) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: conditions}
}

func fieldCondition(fc *qdrant.FieldCondition) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{Field: fc},
	}
}
