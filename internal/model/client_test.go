package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/tekoetch/investorscout/internal/features"
)

func newTestServer(t *testing.T, loaded bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			json.NewEncoder(w).Encode(HealthResponse{Status: "ok", ModelLoaded: loaded, Features: 12})
		case "/predict":
			var req PredictRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if req.Name == "broken" {
				http.Error(w, "model exploded", http.StatusInternalServerError)
				return
			}
			identity := 1.0
			if req.Features["FP_HAS_IDENTITY"] == 1 {
				identity = 9.0
			}
			json.NewEncoder(w).Encode(Prediction{Identity: identity, Behavior: 5, Geo: 7, Contact: 3})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, true)
	c := New(srv.URL+"/", 0)

	if c.BaseURL() != srv.URL {
		t.Errorf("expected trailing slash to be trimmed, got %s", c.BaseURL())
	}

	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if !health.ModelLoaded || health.Features != 12 {
		t.Errorf("unexpected health %+v", health)
	}
	if err := c.EnsureRunning(context.Background()); err != nil {
		t.Errorf("EnsureRunning failed: %v", err)
	}
}

func TestEnsureRunning_NoModel(t *testing.T) {
	srv := newTestServer(t, false)
	c := New(srv.URL, 0)

	err := c.EnsureRunning(context.Background())
	if err == nil {
		t.Fatal("expected error when no model is loaded")
	}
	if !strings.Contains(err.Error(), srv.URL) {
		t.Errorf("expected error to name the service address, got %v", err)
	}
}

func TestPredict(t *testing.T) {
	srv := newTestServer(t, true)
	c := New(srv.URL, 0)

	pred, err := c.Predict(context.Background(), PredictRequest{
		Name:     "Jane Doe",
		Features: map[string]int{"FP_HAS_IDENTITY": 1},
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.Name != "Jane Doe" {
		t.Errorf("expected name to be filled from request, got %q", pred.Name)
	}
	if pred.Identity != 9 {
		t.Errorf("expected Identity=9, got %v", pred.Identity)
	}
	if pred.Mean() != 6 {
		t.Errorf("expected Mean=6, got %v", pred.Mean())
	}

	if _, err := c.Predict(context.Background(), PredictRequest{Name: "broken"}); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestPredictRows(t *testing.T) {
	srv := newTestServer(t, true)
	c := New(srv.URL, 0)

	rows := []features.Row{
		{Name: "Jane Doe", Features: map[string]int{"FP_HAS_IDENTITY": 1}},
		{Name: "broken"},
		{Name: "Omar Haddad", Features: map[string]int{}},
	}

	var calls int64
	results := c.PredictRows(context.Background(), rows, func(current, total int) {
		atomic.AddInt64(&calls, 1)
		if total != 3 {
			t.Errorf("expected total=3, got %d", total)
		}
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Error != nil || results[0].Prediction.Identity != 9 {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if results[1].Error == nil {
		t.Error("expected error for broken row")
	}
	if results[2].Prediction == nil || results[2].Prediction.Name != "Omar Haddad" {
		t.Errorf("expected results in input order, got %+v", results[2])
	}
	if got := atomic.LoadInt64(&calls); got != 4 {
		t.Errorf("expected 4 progress calls, got %d", got)
	}
}
