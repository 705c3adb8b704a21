// Package chi implements the HTTP API: hybrid search, heatmap projection,
// health and metrics.
package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"

	// Decoders for upload validation.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lagunalab/cartodex/internal/domain"
	domheat "github.com/lagunalab/cartodex/internal/domain/heatmap"
	"github.com/lagunalab/cartodex/internal/domain/search/filter"
	"github.com/lagunalab/cartodex/internal/domain/search/request"
	"github.com/lagunalab/cartodex/internal/domain/search/result"
	"github.com/lagunalab/cartodex/internal/usecase/health"
)

// maxUploadBytes bounds the multipart image upload.
const maxUploadBytes = 16 << 20

// SearchService is the fusion pipeline consumed by the transport.
type SearchService interface {
	SearchText(ctx context.Context, req *request.Request) []result.Item
	SearchImage(ctx context.Context, image []byte, limit int, threshold float64) []result.Item
}

// HeatmapService is the heatmap pipeline consumed by the transport.
type HeatmapService interface {
	Points(ctx context.Context, query string, limit int) []domheat.Point
	Binary(ctx context.Context, query string, limit int) []byte
}

// HealthService aggregates component checks.
type HealthService interface {
	Check(ctx context.Context) health.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search  SearchService
	heatmap HeatmapService
	health  HealthService
	// defaultThreshold is applied when a search request omits the relative
	// score cutoff. Configured, not a constant: operators tune it per corpus.
	defaultThreshold float64
	logger           *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(search SearchService, heatmap HeatmapService, healthSvc HealthService, defaultThreshold float64, logger *zap.Logger) *Server {
	return &Server{
		search:           search,
		heatmap:          heatmap,
		health:           healthSvc,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search/text", s.SearchText)
		r.Post("/search/image", s.SearchImage)
		r.Get("/heatmap-data", s.HeatmapData)
		r.Get("/heatmap/binary", s.HeatmapBinary)
	})
	r.Get("/healthz", s.Healthz)
	r.Get("/metrics", s.Metrics)
}

// filtersBody is the wire shape of the optional search filters.
type filtersBody struct {
	YearStart *int      `json:"year_start"`
	YearEnd   *int      `json:"year_end"`
	MapSource string    `json:"map_source"`
	GeoBBox   []float64 `json:"geo_bbox"`
}

// textSearchBody is the wire shape of POST /search/text.
type textSearchBody struct {
	Query     string       `json:"query"`
	Limit     int          `json:"limit"`
	Threshold *float64     `json:"threshold"`
	Filters   *filtersBody `json:"filters"`
}

// searchResponse is the unified success envelope.
type searchResponse struct {
	Status string        `json:"status"`
	Count  int           `json:"count"`
	Data   []result.Item `json:"data"`
}

// heatmapResponse is the JSON heatmap envelope.
type heatmapResponse struct {
	Status string          `json:"status"`
	Count  int             `json:"count"`
	Data   []domheat.Point `json:"data"`
}

// SearchText handles POST /api/v1/search/text.
func (s *Server) SearchText(w http.ResponseWriter, r *http.Request) {
	var body textSearchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	filters, err := filtersFromBody(body.Filters)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	threshold := s.defaultThreshold
	if body.Threshold != nil {
		threshold = *body.Threshold
	}

	req, err := request.New(body.Query, body.Limit, threshold, filters)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := s.search.SearchText(r.Context(), &req)
	writeJSON(w, http.StatusOK, searchResponse{Status: "success", Count: len(items), Data: items})
}

// SearchImage handles POST /api/v1/search/image (multipart form).
func (s *Server) SearchImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		writeDomainError(w, fmt.Errorf("%w: %s", domain.ErrBadImage, err.Error()))
		return
	}

	limit := formInt(r, "limit", request.DefaultLimit)
	threshold := formFloat(r, "threshold", s.defaultThreshold)

	items := s.search.SearchImage(r.Context(), data, limit, threshold)
	writeJSON(w, http.StatusOK, searchResponse{Status: "success", Count: len(items), Data: items})
}

// HeatmapData handles GET /api/v1/heatmap-data.
func (s *Server) HeatmapData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := queryInt(r, "limit", 2000)

	points := s.heatmap.Points(r.Context(), query, limit)
	writeJSON(w, http.StatusOK, heatmapResponse{Status: "success", Count: len(points), Data: points})
}

// HeatmapBinary handles GET /api/v1/heatmap/binary: concatenated 12-byte
// little-endian (lat, lng, score) float32 records, no envelope.
func (s *Server) HeatmapBinary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := queryInt(r, "limit", 10000)

	body := s.heatmap.Binary(r.Context(), query, limit)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func filtersFromBody(body *filtersBody) (filter.Filters, error) {
	if body == nil {
		return filter.Filters{}, nil
	}
	f, err := filter.New(body.YearStart, body.YearEnd, body.MapSource, body.GeoBBox)
	if err != nil {
		return filter.Filters{}, fmt.Errorf("invalid filters: %w", err)
	}
	return f, nil
}

func formInt(r *http.Request, key string, fallback int) int {
	if v := r.FormValue(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func formFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.FormValue(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the single error envelope used by every failure response.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeDomainError maps domain sentinels to HTTP status codes: schema
// violations are 422, undecodable uploads 400, everything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrBadImage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
