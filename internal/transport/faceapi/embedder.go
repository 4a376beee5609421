package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/metrics"
)

const (
	provider     = "face"
	embedPath    = "/embed"
	healthPath   = "/health"
	maxErrorBody = 512
)

// Config holds the face embedding service settings.
type Config struct {
	Endpoint   string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// Embedder calls a face detection service that returns the embedding of the
// most prominent face in a photo.
type Embedder struct {
	endpoint   string
	model      string
	dimensions int
	client     *http.Client
}

// NewEmbedder creates a face embedding client.
func NewEmbedder(cfg Config) *Embedder {
	return &Embedder{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Faces     int       `json:"faces"`
}

// EmbedFace implements domain.FaceEmbedder.
func (e *Embedder) EmbedFace(ctx context.Context, image []byte) ([]float32, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image: %w", domain.ErrInvalidRequest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+embedPath, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	start := time.Now()
	vec, err := e.do(req)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, errorType(err)).Inc()
		return nil, err
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(time.Since(start).Seconds())
	return vec, nil
}

var (
	errNoFace       = errors.New("no face detected")
	errDimension    = errors.New("unexpected embedding width")
	errUpstreamCode = errors.New("face service error")
)

func (e *Embedder) do(req *http.Request) ([]float32, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face request: %w: %w", domain.ErrFaceProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w %d: %s: %w",
			errUpstreamCode, resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrFaceProviderError)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode face response: %w: %w", domain.ErrFaceProviderError, err)
	}
	if out.Faces == 0 || len(out.Embedding) == 0 {
		return nil, fmt.Errorf("%w: %w", errNoFace, domain.ErrFaceProviderError)
	}
	if e.dimensions > 0 && len(out.Embedding) != e.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d: %w",
			errDimension, len(out.Embedding), e.dimensions, domain.ErrFaceProviderError)
	}
	return out.Embedding, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, errNoFace):
		return "no_face"
	case errors.Is(err, errDimension):
		return "dimension_mismatch"
	case errors.Is(err, errUpstreamCode):
		return "api_error"
	default:
		return "transport_error"
	}
}

// HealthCheck pings the face service.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+healthPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("face health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("face health: status %d", resp.StatusCode)
	}
	return nil
}
