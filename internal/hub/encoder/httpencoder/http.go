// Package httpencoder implements encoder.Encoder against an HTTP
// embeddings endpoint (OpenAI-compatible request/response shape),
// grounded on the embedding client in
// other_examples/a8bbf20e_ehrlich-b-wingthing__experiments-embedding-main.go.go.
package httpencoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/terminalhub/hub/internal/hub/domain"
)

const defaultTimeout = 30 * time.Second

// Config configures an Encoder.
type Config struct {
	BaseURL string // e.g. "https://api.example.com/v1"
	Model   string
	APIKey  string
	Dim     uint64
	Client  *http.Client // optional; defaults to a client with defaultTimeout
}

// Encoder calls a remote embeddings endpoint over HTTP.
type Encoder struct {
	cfg    Config
	client *http.Client
}

// New builds an Encoder from cfg.
func New(cfg Config) *Encoder {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Encoder{cfg: cfg, client: client}
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Encode embeds a single phrase. A non-200 response, a transport error,
// or a dimension mismatch against the configured Dim are all reported
// as domain.EncoderError — never fatal to the caller.
func (e *Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model:      e.cfg.Model,
		Input:      []string{text},
		Dimensions: int(e.cfg.Dim),
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, domain.NewEncoderError(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewEncoderError(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, domain.NewEncoderError(fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, domain.NewEncoderError(fmt.Errorf("embeddings endpoint %d: %s", resp.StatusCode, string(b)))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.NewEncoderError(fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Data) == 0 {
		return nil, domain.NewEncoderError(fmt.Errorf("embeddings endpoint returned no data"))
	}

	vec := parsed.Data[0].Embedding
	if e.cfg.Dim != 0 && uint64(len(vec)) != e.cfg.Dim {
		return nil, domain.NewEncoderError(fmt.Errorf("dimension mismatch: got %d, want %d", len(vec), e.cfg.Dim))
	}
	return vec, nil
}

// Dimension returns the configured embedding dimension.
func (e *Encoder) Dimension() uint64 { return e.cfg.Dim }
