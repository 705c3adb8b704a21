// Package result holds the fused, user-facing search result shapes.
package result

import "github.com/lagunalab/cartodex/internal/domain/search/source"

// Item is one fused search result. Score is the post-normalization value and
// may be negative. PixelCoords and ImageSource are map-tile specific and stay
// nil for documents.
type Item struct {
	ID             string         `json:"id"`
	Score          float64        `json:"score"`
	Lat            float64        `json:"lat"`
	Lng            float64        `json:"lng"`
	Year           int            `json:"year"`
	Kind           source.Kind    `json:"type"`
	ContentPreview string         `json:"content,omitempty"`
	PixelCoords    []int          `json:"pixel_coords,omitempty"`
	ImageSource    string         `json:"image_source,omitempty"`
	SourceDataset  string         `json:"source_dataset,omitempty"`
	FullPayload    map[string]any `json:"fullData,omitempty"`
}

// SourceSet is one source's contribution to a fused search: the ordered items
// that survived the absolute floor, plus the error that emptied the set when
// the source failed. A set is owned by the executor goroutine that built it
// until the coordinator joins; after the merge nothing aliases its items.
type SourceSet struct {
	Kind  source.Kind
	Items []Item
	Err   error
}

// Empty returns a SourceSet with no items, recording err (which may be nil).
func Empty(kind source.Kind, err error) SourceSet {
	return SourceSet{Kind: kind, Err: err}
}
