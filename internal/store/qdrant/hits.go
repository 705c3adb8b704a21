package qdrant

import (
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/lagunalab/cartodex/internal/store"
)

// newHit normalizes one Qdrant point into the typed store.Hit. This is the
// single place payload shapes are inspected; everything above the store
// boundary works with typed fields.
func newHit(id *qdrant.PointId, score float32, payload map[string]*qdrant.Value) store.Hit {
	hit := store.Hit{
		ID:    pointID(id),
		Score: score,
	}
	if len(payload) == 0 {
		return hit
	}

	hit.Location = spatialPayload(payload[fieldLocation])
	hit.Content = payload["content"].GetStringValue()
	hit.SourceDataset = payload["source_dataset"].GetStringValue()
	hit.SourceImage = payload[fieldSourceImage].GetStringValue()
	if y, ok := numberValue(payload[fieldYear]); ok {
		hit.Year = int(y)
	}
	if coords := payload["pixel_coords"].GetListValue(); coords != nil {
		hit.PixelCoords = make([]int, 0, len(coords.Values))
		for _, v := range coords.Values {
			if n, ok := numberValue(v); ok {
				hit.PixelCoords = append(hit.PixelCoords, int(n))
			}
		}
	}

	hit.Full = make(map[string]any, len(payload))
	for k, v := range payload {
		hit.Full[k] = valueToAny(v)
	}
	return hit
}

// spatialPayload extracts a typed location from a {"lat": .., "lon": ..}
// payload object. Missing or malformed locations yield nil, never (0, 0).
func spatialPayload(v *qdrant.Value) *store.SpatialPayload {
	obj := v.GetStructValue()
	if obj == nil {
		return nil
	}
	lat, latOK := numberValue(obj.Fields["lat"])
	lng, lngOK := numberValue(obj.Fields["lon"])
	if !latOK || !lngOK {
		return nil
	}
	return &store.SpatialPayload{Lat: lat, Lng: lng}
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// numberValue reads a numeric payload value stored as either integer or double.
func numberValue(v *qdrant.Value) (float64, bool) {
	switch v.GetKind().(type) {
	case *qdrant.Value_IntegerValue:
		return float64(v.GetIntegerValue()), true
	case *qdrant.Value_DoubleValue:
		return v.GetDoubleValue(), true
	default:
		return 0, false
	}
}

func valueToAny(v *qdrant.Value) any {
	switch val := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		m := make(map[string]any, len(val.StructValue.Fields))
		for k, f := range val.StructValue.Fields {
			m[k] = valueToAny(f)
		}
		return m
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		list := make([]any, 0, len(val.ListValue.Values))
		for _, f := range val.ListValue.Values {
			list = append(list, valueToAny(f))
		}
		return list
	default:
		return nil
	}
}
