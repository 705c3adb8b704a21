// Package heatmap defines the lightweight spatial projection of search
// results and its binary wire format.
package heatmap

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lagunalab/cartodex/internal/domain"
)

// RecordSize is the fixed width of one encoded point: three little-endian
// IEEE-754 float32 values (lat, lng, score), no header or padding.
const RecordSize = 12

// Point is one heatmap sample. Score is 1.0 in density mode.
type Point struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Score float32 `json:"score"`
}

// Encode serializes points into concatenated 12-byte records.
// Encoding zero points yields zero bytes.
func Encode(points []Point) []byte {
	buf := make([]byte, 0, len(points)*RecordSize)
	for _, p := range points {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(p.Lat)))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(p.Lng)))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p.Score))
	}
	return buf
}

// Decode is the exact inverse of Encode. A byte length that is not a multiple
// of RecordSize is a framing error.
func Decode(data []byte) ([]Point, error) {
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", domain.ErrBadFrame, len(data), RecordSize)
	}
	points := make([]Point, 0, len(data)/RecordSize)
	for off := 0; off < len(data); off += RecordSize {
		points = append(points, Point{
			Lat:   float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))),
			Lng:   float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:]))),
			Score: math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:])),
		})
	}
	return points, nil
}
