package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/metrics"
)

// DefaultProvider labels metrics when Config.Provider is empty.
const DefaultProvider = "openai"

// Embedder turns case descriptions into text-space vectors through an OpenAI-compatible API.
// Every returned vector has the configured text-space width, or the call fails.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	labels     callLabels
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int // text-space width; 0 accepts whatever the model returns
	User       string
	Provider   string
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	provider := cfg.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		labels:     callLabels{provider: provider, model: cfg.Model},
		logger:     logger,
	}
}

// Embed implements domain.Embedder. Runs of whitespace in a description collapse to
// one space; a blank description is rejected without calling the provider.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	description := normalizeDescription(text)
	if description == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("empty description: %w", domain.ErrInvalidRequest)
	}

	req := openai.EmbeddingRequest{
		Input:          []string{description},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		e.labels.fail("api_error")
		return domain.EmbeddingResult{}, providerError(err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		e.labels.fail("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		e.labels.fail("dimension_mismatch")
		e.logger.Warn("Text embedding width differs from the text space",
			zap.String("model", e.labels.model),
			zap.Int("got", len(vec)),
			zap.Int("want", e.dimensions),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embedding has %d dimensions, text space wants %d: %w",
			len(vec), e.dimensions, domain.ErrEmbeddingProviderError)
	}

	e.labels.succeed(elapsed, resp.Usage.PromptTokens, resp.Usage.TotalTokens)

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func normalizeDescription(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// callLabels record the transport metrics of one provider and model.
type callLabels struct {
	provider string
	model    string
}

func (l callLabels) fail(reason string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(l.provider, l.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(l.provider, l.model, reason).Inc()
}

func (l callLabels) succeed(elapsed time.Duration, promptTokens, totalTokens int) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(l.provider, l.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(l.provider, l.model).Observe(elapsed.Seconds())
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(l.provider, l.model, "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(l.provider, l.model, "total").Add(float64(totalTokens))
	}
}

// providerError wraps every transport failure in domain.ErrEmbeddingProviderError,
// keeping the provider's status code and message when there is one.
func providerError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := extractDetail(reqErr.Body)
		if msg == "" {
			msg = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, msg, domain.ErrEmbeddingProviderError)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrEmbeddingProviderError)
	}

	return fmt.Errorf("embedding request failed: %v: %w", err, domain.ErrEmbeddingProviderError)
}

// extractDetail reads the "detail" field some OpenAI-compatible hosts use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
