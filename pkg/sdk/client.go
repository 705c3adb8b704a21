package cartodex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lagunalab/cartodex/internal/domain/heatmap"
)

const defaultTimeout = 30 * time.Second

// Client is the cartodex API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API at baseURL (scheme and host, no path).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// SearchText runs a hybrid text search across both collections.
func (c *Client) SearchText(ctx context.Context, q TextQuery) (SearchResult, error) {
	var out SearchResult

	body, err := json.Marshal(q)
	if err != nil {
		return out, fmt.Errorf("cartodex: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/search/text", bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("cartodex: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	err = c.do(req, &out)
	return out, err
}

// SearchImage runs a visual search with the given image bytes. A zero limit
// or threshold leaves the server default in effect.
func (c *Client) SearchImage(ctx context.Context, image []byte, limit int, threshold *float64) (SearchResult, error) {
	var out SearchResult

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "query-image")
	if err != nil {
		return out, fmt.Errorf("cartodex: build form: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return out, fmt.Errorf("cartodex: build form: %w", err)
	}
	if limit > 0 {
		_ = mw.WriteField("limit", strconv.Itoa(limit))
	}
	if threshold != nil {
		_ = mw.WriteField("threshold", strconv.FormatFloat(*threshold, 'f', -1, 64))
	}
	if err := mw.Close(); err != nil {
		return out, fmt.Errorf("cartodex: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/search/image", &body)
	if err != nil {
		return out, fmt.Errorf("cartodex: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	err = c.do(req, &out)
	return out, err
}

// HeatmapPoints fetches heatmap samples as JSON. An empty query selects
// density mode.
func (c *Client) HeatmapPoints(ctx context.Context, query string, limit int) (HeatmapResult, error) {
	var out HeatmapResult

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/heatmap-data?"+heatmapQuery(query, limit), nil)
	if err != nil {
		return out, fmt.Errorf("cartodex: build request: %w", err)
	}

	err = c.do(req, &out)
	return out, err
}

// HeatmapBinary fetches heatmap samples over the compact binary encoding and
// decodes them client-side.
func (c *Client) HeatmapBinary(ctx context.Context, query string, limit int) ([]Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/heatmap/binary?"+heatmapQuery(query, limit), nil)
	if err != nil {
		return nil, fmt.Errorf("cartodex: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cartodex: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cartodex: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, raw)
	}

	decoded, err := heatmap.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("cartodex: decode heatmap: %w", err)
	}
	points := make([]Point, len(decoded))
	for i, p := range decoded {
		points[i] = Point{Lat: p.Lat, Lng: p.Lng, Score: p.Score}
	}
	return points, nil
}

// Health fetches the aggregated health report. A degraded report is returned
// alongside a nil error; only transport failures error.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var out HealthReport

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return out, fmt.Errorf("cartodex: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("cartodex: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("cartodex: decode response: %w", err)
	}
	return out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cartodex: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cartodex: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cartodex: decode response: %w", err)
	}
	return nil
}

func heatmapQuery(query string, limit int) string {
	v := url.Values{}
	if query != "" {
		v.Set("query", query)
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v.Encode()
}

// apiError parses the server's {"detail": ...} envelope, falling back to the
// raw body for non-JSON errors.
func apiError(status int, raw []byte) error {
	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Detail != "" {
		return &APIError{StatusCode: status, Detail: envelope.Detail}
	}
	return &APIError{StatusCode: status, Detail: strings.TrimSpace(string(raw))}
}
