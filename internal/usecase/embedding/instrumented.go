package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
)

// InstrumentedEmbedder wraps a text embedder with logging and per-request usage accounting.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and adds the consumed tokens to the
// usage collector in ctx, if any.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	domain.UsageFromContext(ctx).AddText(result.TotalTokens)

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// InstrumentedFaceEmbedder wraps a face embedder with logging and per-request usage accounting.
type InstrumentedFaceEmbedder struct {
	inner  domain.FaceEmbedder
	logger *zap.Logger
}

// NewInstrumentedFaceEmbedder wraps a face embedder with observability.
func NewInstrumentedFaceEmbedder(inner domain.FaceEmbedder, logger *zap.Logger) *InstrumentedFaceEmbedder {
	return &InstrumentedFaceEmbedder{inner: inner, logger: logger}
}

// EmbedFace delegates to the inner face embedder and counts the call in the usage tally in ctx.
func (p *InstrumentedFaceEmbedder) EmbedFace(ctx context.Context, image []byte) ([]float32, error) {
	start := time.Now()

	vec, err := p.inner.EmbedFace(ctx, image)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Face embedding failed",
			zap.Int("image_bytes", len(image)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("embed face: %w", err)
	}

	domain.UsageFromContext(ctx).AddFace()

	p.logger.Debug("Face embedding completed",
		zap.Int("image_bytes", len(image)),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(vec)),
	)
	return vec, nil
}
