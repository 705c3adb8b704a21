package cartodex

// TextQuery is a text search request.
type TextQuery struct {
	Query     string   `json:"query"`
	Limit     int      `json:"limit,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Filters   *Filters `json:"filters,omitempty"`
}

// Filters narrows a text search. GeoBBox is [minLon, minLat, maxLon, maxLat].
type Filters struct {
	YearStart *int      `json:"year_start,omitempty"`
	YearEnd   *int      `json:"year_end,omitempty"`
	MapSource string    `json:"map_source,omitempty"`
	GeoBBox   []float64 `json:"geo_bbox,omitempty"`
}

// Item is one fused search result.
type Item struct {
	ID            string         `json:"id"`
	Score         float64        `json:"score"`
	Lat           float64        `json:"lat"`
	Lng           float64        `json:"lng"`
	Year          int            `json:"year"`
	Kind          string         `json:"type"`
	Content       string         `json:"content"`
	PixelCoords   []int          `json:"pixel_coords,omitempty"`
	ImageSource   string         `json:"image_source,omitempty"`
	SourceDataset string         `json:"source_dataset,omitempty"`
	FullData      map[string]any `json:"fullData,omitempty"`
}

// SearchResult is the search response envelope.
type SearchResult struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Data   []Item `json:"data"`
}

// Point is one heatmap sample.
type Point struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Score float32 `json:"score"`
}

// HeatmapResult is the JSON heatmap response envelope.
type HeatmapResult struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Data   []Point `json:"data"`
}

// HealthReport is the aggregated health check response.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
