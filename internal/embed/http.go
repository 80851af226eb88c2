package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPEncoder generates embeddings through an inference server speaking
// the Ollama embed API.
type HTTPEncoder struct {
	client *http.Client
	host   string
	model  string
	dims   int
}

var _ Encoder = (*HTTPEncoder)(nil)

// HTTPConfig configures an HTTPEncoder.
type HTTPConfig struct {
	// Host is the inference server base URL.
	Host string
	// Model is the model identifier passed with every request.
	Model string
	// Dimensions is the expected vector width. Responses of a different
	// width are rejected.
	Dimensions int
	// Timeout bounds a single encode round trip.
	Timeout time.Duration
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewHTTPEncoder creates an encoder against the given inference server.
func NewHTTPEncoder(cfg HTTPConfig) *HTTPEncoder {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &HTTPEncoder{
		client: &http.Client{Timeout: cfg.Timeout},
		host:   cfg.Host,
		model:  cfg.Model,
		dims:   cfg.Dimensions,
	}
}

// Encode embeds text via the server's /api/embed endpoint.
func (e *HTTPEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	url := e.host + "/api/embed"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request to %s: %w", e.host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embed server returned status %d: %s", resp.StatusCode, string(body))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embed server returned no embeddings")
	}

	vec := result.Embeddings[0]
	if len(vec) != e.dims {
		return nil, fmt.Errorf("embed server returned %d dimensions, expected %d", len(vec), e.dims)
	}
	return vec, nil
}

// Dimensions returns the vector width of the model.
func (e *HTTPEncoder) Dimensions() int { return e.dims }

// ModelName identifies the model.
func (e *HTTPEncoder) ModelName() string { return e.model }

// Close releases idle connections held by the underlying client.
func (e *HTTPEncoder) Close() {
	e.client.CloseIdleConnections()
}
