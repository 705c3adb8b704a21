package heatmap

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/lagunalab/cartodex/internal/domain"
)

func TestEncodeLayout(t *testing.T) {
	pts := []Point{
		{Lat: 45.4371, Lng: 12.3326, Score: 0.87},
		{Lat: -12.5, Lng: 130.25, Score: 1.0},
	}

	buf := Encode(pts)
	if len(buf) != len(pts)*RecordSize {
		t.Fatalf("encoded length = %d, want %d", len(buf), len(pts)*RecordSize)
	}

	for i, p := range pts {
		off := i * RecordSize
		lat := math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
		lng := math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:]))
		score := math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8:]))

		if lat != float32(p.Lat) {
			t.Errorf("point %d: lat = %v, want %v", i, lat, float32(p.Lat))
		}
		if lng != float32(p.Lng) {
			t.Errorf("point %d: lng = %v, want %v", i, lng, float32(p.Lng))
		}
		if score != p.Score {
			t.Errorf("point %d: score = %v, want %v", i, score, p.Score)
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	if buf := Encode(nil); len(buf) != 0 {
		t.Fatalf("Encode(nil) = %d bytes, want 0", len(buf))
	}
	if buf := Encode([]Point{}); len(buf) != 0 {
		t.Fatalf("Encode(empty) = %d bytes, want 0", len(buf))
	}
}

func TestRoundTrip(t *testing.T) {
	in := []Point{
		{Lat: 45.4408, Lng: 12.3155, Score: 0.42},
		{Lat: 0, Lng: 0, Score: 0},
		{Lat: 89.999, Lng: -179.999, Score: 0.001},
	}

	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("decoded %d points, want %d", len(out), len(in))
	}
	for i := range in {
		if float32(out[i].Lat) != float32(in[i].Lat) ||
			float32(out[i].Lng) != float32(in[i].Lng) ||
			out[i].Score != in[i].Score {
			t.Errorf("point %d: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestDecodeBadFraming(t *testing.T) {
	for _, n := range []int{1, 7, 11, 13, 25} {
		if _, err := Decode(make([]byte, n)); !errors.Is(err, domain.ErrBadFrame) {
			t.Errorf("Decode(%d bytes): err = %v, want ErrBadFrame", n, err)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	out, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil): %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("Decode(nil) = %d points, want 0", len(out))
	}
}
