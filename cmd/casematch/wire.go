package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/config"
	"github.com/kailas-cloud/casematch/internal/db"
	dbValkey "github.com/kailas-cloud/casematch/internal/db/valkey"
	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	"github.com/kailas-cloud/casematch/internal/metrics"
	"github.com/kailas-cloud/casematch/internal/repository/embcache"
	spacerepo "github.com/kailas-cloud/casematch/internal/repository/space"
	"github.com/kailas-cloud/casematch/internal/transport/faceapi"
	openaiEmb "github.com/kailas-cloud/casematch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/casematch/internal/usecase/embedding"
	"github.com/kailas-cloud/casematch/internal/usecase/ingest"
)

// openStore connects to the similarity index and waits until it answers.
// valkey and redis share one client since both speak the same FT dialect.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case "valkey", "redis":
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
	return store, nil
}

func dimensions(cfg config.SpacesConfig) space.Dimensions {
	return space.Dimensions{
		space.Face: cfg.FaceDimensions,
		space.Text: cfg.TextDimensions,
	}
}

func newSpaceRepo(store db.Store, cfg config.SpacesConfig) *spacerepo.Repo {
	return spacerepo.New(store, dimensions(cfg)).WithHNSW(spacerepo.HNSWConfig{
		M:           cfg.HNSWM,
		EFConstruct: cfg.HNSWEFConstruct,
	})
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
// It returns the bare provider for health checks next to the chain, or two nils
// when no API key is configured.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) (*openaiEmb.Embedder, domain.Embedder) {
	if cfg.Embedding.APIKey == "" {
		logger.Warn("Text embedding disabled, no api key configured")
		return nil, nil
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Spaces.TextDimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cfg.Embedding.Cache.Enabled {
		embedder = embcache.New(base, store, embcache.Options{
			Model:      cfg.Embedding.Model,
			TTL:        time.Duration(cfg.Embedding.Cache.TTLSec) * time.Second,
			CacheTotal: metrics.EmbeddingCacheTotal,
		}, logger)
	}

	logger.Info("Text embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Spaces.TextDimensions),
		zap.Bool("cache", cfg.Embedding.Cache.Enabled),
	)
	return base, embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)
}

// withInstruction wraps e with a prefix decorator; nil and empty pass through.
func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if e == nil || instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// buildFaceEmbedder returns the face client and its instrumented wrapper, or two nils
// when no endpoint is configured.
func buildFaceEmbedder(cfg config.Config, logger *zap.Logger) (*faceapi.Embedder, domain.FaceEmbedder) {
	if cfg.Face.Endpoint == "" {
		logger.Warn("Face embedding disabled, no endpoint configured")
		return nil, nil
	}
	client := faceapi.NewEmbedder(faceapi.Config{
		Endpoint:   cfg.Face.Endpoint,
		Model:      cfg.Face.Model,
		Dimensions: cfg.Spaces.FaceDimensions,
		Timeout:    time.Duration(cfg.Face.TimeoutSec) * time.Second,
	})
	logger.Info("Face embedder created", zap.String("endpoint", cfg.Face.Endpoint))
	return client, embeddinguc.NewInstrumentedFaceEmbedder(client, logger)
}

// photoLoader reads profile photos relative to dir. References cannot escape dir.
func photoLoader(dir string) ingest.PhotoLoader {
	if dir == "" {
		return nil
	}
	return func(_ context.Context, ref string) ([]byte, error) {
		path := filepath.Join(dir, filepath.Clean(string(filepath.Separator)+ref))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read photo %s: %w", ref, err)
		}
		return data, nil
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
