package casematch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/db"
	dbValkey "github.com/kailas-cloud/casematch/internal/db/valkey"
	"github.com/kailas-cloud/casematch/internal/domain"
	dombatch "github.com/kailas-cloud/casematch/internal/domain/batch"
	domrecord "github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	recordrepo "github.com/kailas-cloud/casematch/internal/repository/record"
	spacerepo "github.com/kailas-cloud/casematch/internal/repository/space"
	healthuc "github.com/kailas-cloud/casematch/internal/usecase/health"
	"github.com/kailas-cloud/casematch/internal/usecase/ingest"
	"github.com/kailas-cloud/casematch/internal/usecase/match"
	"github.com/kailas-cloud/casematch/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped out in tests.
type retrievalUseCase interface {
	SearchAndCombine(ctx context.Context, q query.Query) ([]candidate.Candidate, error)
}

type ingestUseCase interface {
	Ingest(ctx context.Context, it ingest.Item) ([]space.Space, error)
	IngestBatch(ctx context.Context, items []ingest.Item) []dombatch.Result
	Remove(ctx context.Context, pid string) error
}

type recordStore interface {
	Count(ctx context.Context) (domrecord.Counts, error)
	Ping(ctx context.Context) error
	Close() error
}

type spaceUseCase interface {
	EnsureIndex(ctx context.Context, sp space.Space) (bool, error)
	Count(ctx context.Context, sp space.Space) (int, error)
}

// searchDefaults fill the parts of a SearchRequest left unset.
type searchDefaults struct {
	weightFace float64
	weightText float64
	topN       int
	poolLimit  int
	maxPool    int
}

// Client is the casematch SDK entry point.
type Client struct {
	store     db.Store
	retrieval retrievalUseCase
	ingest    ingestUseCase
	spaces    spaceUseCase
	records   recordStore
	health    healthUseCase
	text      domain.Embedder
	face      domain.FaceEmbedder
	defaults  searchDefaults
	obs       *observer
}

// New creates a casematch Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		faceDimensions: DefaultFaceDimensions,
		textDimensions: DefaultTextDimensions,
		weightFace:     match.DefaultWeightFace,
		weightText:     match.DefaultWeightText,
		topN:           query.DefaultTopN,
		poolLimit:      query.DefaultPoolLimit,
		maxPool:        query.MaxPoolLimit,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("casematch: database address required (use WithValkey or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("casematch: database not ready: %w", err)
	}

	// Keep records a nil interface when the option is absent.
	var records recordStore
	if cfg.recordsDSN != "" {
		repo, err := recordrepo.Open(ctx, cfg.recordsDSN)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("casematch: open records: %w", err)
		}
		records = repo
	}

	return wireClient(store, records, cfg, obs), nil
}

// createStore opens the index client. Valkey and Redis share one client.
func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("casematch: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("casematch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, records recordStore, cfg *clientConfig, obs *observer) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dims := space.Dimensions{
		space.Face: cfg.faceDimensions,
		space.Text: cfg.textDimensions,
	}
	spaces := spacerepo.New(store, dims).WithHNSW(spacerepo.HNSWConfig{
		M:           cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	})

	// Keep nil interfaces nil so the use cases can tell a missing embedder apart.
	var text domain.Embedder
	if cfg.embedder != nil {
		text = &embedderAdapter{inner: cfg.embedder}
	}
	var face domain.FaceEmbedder
	if cfg.faceEmbedder != nil {
		face = cfg.faceEmbedder
	}

	searcher := retrieval.NewDualSearcher(spaces, logger).WithSpaceTimeout(cfg.spaceTimeout)

	var recordsCheck healthuc.Pinger
	if records != nil {
		recordsCheck = records
	}

	return &Client{
		store:     store,
		records:   records,
		retrieval: retrieval.New(searcher, dims),
		ingest:    ingest.New(spaces, text, face, logger),
		spaces:    spaces,
		health:    healthuc.New(store, recordsCheck, nil, nil),
		text:      text,
		face:      face,
		defaults: searchDefaults{
			weightFace: cfg.weightFace,
			weightText: cfg.weightText,
			topN:       cfg.topN,
			poolLimit:  cfg.poolLimit,
			maxPool:    cfg.maxPool,
		},
		obs: obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
	if c.records != nil {
		_ = c.records.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndexes creates the face and text indexes that do not exist yet.
func (c *Client) EnsureIndexes(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_indexes", start, err) }()

	for _, sp := range space.All() {
		if _, err = c.spaces.EnsureIndex(ctx, sp); err != nil {
			return fmt.Errorf("ensure %s index: %w", sp, err)
		}
	}
	return nil
}

// Count returns the number of embeddings stored in each space.
func (c *Client) Count(ctx context.Context) (counts map[string]int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err) }()

	counts = make(map[string]int, len(space.All()))
	for _, sp := range space.All() {
		n, err := c.spaces.Count(ctx, sp)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", sp, err)
		}
		counts[string(sp)] = n
	}
	return counts, nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
