package cartodex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lagunalab/cartodex/internal/domain/heatmap"
)

func TestSearchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/search/text" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var q TextQuery
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if q.Query != "rialto" || q.Limit != 5 {
			t.Errorf("query = %+v", q)
		}
		_ = json.NewEncoder(w).Encode(SearchResult{
			Status: "success",
			Count:  1,
			Data:   []Item{{ID: "d1", Score: 1.3, Kind: "document", Content: "fish market"}},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	res, err := client.SearchText(context.Background(), TextQuery{Query: "rialto", Limit: 5})
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if res.Count != 1 || res.Data[0].ID != "d1" {
		t.Errorf("result = %+v", res)
	}
}

func TestSearchTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": "query is required"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.SearchText(context.Background(), TextQuery{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Detail != "query is required" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestSearchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			_ = file.Close()
		}
		if r.FormValue("limit") != "3" {
			t.Errorf("limit field = %q", r.FormValue("limit"))
		}
		if r.FormValue("threshold") != "0.1" {
			t.Errorf("threshold field = %q", r.FormValue("threshold"))
		}
		_ = json.NewEncoder(w).Encode(SearchResult{Status: "success"})
	}))
	defer srv.Close()

	threshold := 0.1
	client := New(srv.URL)
	if _, err := client.SearchImage(context.Background(), []byte{1, 2, 3}, 3, &threshold); err != nil {
		t.Fatalf("SearchImage: %v", err)
	}
}

func TestHeatmapPoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/heatmap-data" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "arsenal" || r.URL.Query().Get("limit") != "200" {
			t.Errorf("params = %v", r.URL.Query())
		}
		_ = json.NewEncoder(w).Encode(HeatmapResult{
			Status: "success",
			Count:  1,
			Data:   []Point{{Lat: 45.4, Lng: 12.3, Score: 0.8}},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	res, err := client.HeatmapPoints(context.Background(), "arsenal", 200)
	if err != nil {
		t.Fatalf("HeatmapPoints: %v", err)
	}
	if res.Count != 1 || res.Data[0].Lat != 45.4 {
		t.Errorf("result = %+v", res)
	}
}

func TestHeatmapBinary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(heatmap.Encode([]heatmap.Point{
			{Lat: 45.43, Lng: 12.33, Score: 0.9},
			{Lat: 45.44, Lng: 12.34, Score: 0.7},
		}))
	}))
	defer srv.Close()

	client := New(srv.URL)
	pts, err := client.HeatmapBinary(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("HeatmapBinary: %v", err)
	}
	if len(pts) != 2 {
		t.Fatalf("decoded %d points, want 2", len(pts))
	}
	if pts[0].Score != 0.9 || pts[1].Score != 0.7 {
		t.Errorf("scores = %v/%v", pts[0].Score, pts[1].Score)
	}
}

func TestHeatmapBinaryBadFraming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 13))
	}))
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.HeatmapBinary(context.Background(), "", 0); err == nil {
		t.Fatal("expected framing error, got nil")
	}
}

func TestHealthDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthReport{
			Status: "degraded",
			Checks: map[string]string{"store": "error", "text_encoder": "ok"},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	report, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health must report degraded without erroring: %v", err)
	}
	if report.Status != "degraded" || report.Checks["store"] != "error" {
		t.Errorf("report = %+v", report)
	}
}
