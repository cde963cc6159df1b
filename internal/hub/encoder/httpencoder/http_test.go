package httpencoder_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/encoder/httpencoder"
)

func TestEncodeReturnsVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer srv.Close()

	e := httpencoder.New(httpencoder.Config{BaseURL: srv.URL, Model: "test-model", Dim: 3})
	vec, err := e.Encode(context.Background(), "turn on the lamp")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3-dim vector, got %d", len(vec))
	}
}

func TestEncodeRejectsDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float32{0.1, 0.2}},
			},
		})
	}))
	defer srv.Close()

	e := httpencoder.New(httpencoder.Config{BaseURL: srv.URL, Model: "test-model", Dim: 3})
	_, err := e.Encode(context.Background(), "turn on the lamp")
	var encErr *domain.EncoderError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected domain.EncoderError, got %v", err)
	}
}

func TestEncodeSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := httpencoder.New(httpencoder.Config{BaseURL: srv.URL, Model: "test-model", Dim: 3})
	_, err := e.Encode(context.Background(), "turn on the lamp")
	var encErr *domain.EncoderError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected domain.EncoderError, got %v", err)
	}
}

func TestDimensionReturnsConfiguredValue(t *testing.T) {
	e := httpencoder.New(httpencoder.Config{BaseURL: "http://unused", Dim: 1536})
	if e.Dimension() != 1536 {
		t.Fatalf("expected 1536, got %d", e.Dimension())
	}
}
