package casematch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Default space widths, matching the stock face and text models.
const (
	DefaultFaceDimensions = 512
	DefaultTextDimensions = 384
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	recordsDSN string

	embedder     Embedder
	faceEmbedder FaceEmbedder

	faceDimensions  int
	textDimensions  int
	hnswM           int
	hnswEFConstruct int
	spaceTimeout    time.Duration

	weightFace float64
	weightText float64
	topN       int
	poolLimit  int
	maxPool    int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithFaceEmbedder sets the face embedding provider used for photos.
func WithFaceEmbedder(e FaceEmbedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.faceEmbedder = e
	})
}

// WithDimensions sets the vector width of the face and text spaces.
// Defaults: 512 and 384.
func WithDimensions(face, text int) Option {
	return optionFunc(func(c *clientConfig) {
		c.faceDimensions = face
		c.textDimensions = text
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithSpaceTimeout bounds each per-space search. A space that times out counts as empty.
func WithSpaceTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.spaceTimeout = d
	})
}

// WithWeights sets the default fusion weights. Defaults: face 0.6, text 0.4.
func WithWeights(face, text float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.weightFace = face
		c.weightText = text
	})
}

// WithLimits sets the default result count and per-space candidate pool.
// Defaults: 10 and 50.
func WithLimits(topN, poolLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topN = topN
		c.poolLimit = poolLimit
	})
}

// WithRecords opens the SQLite case database at dsn so Stats can report
// record totals per register and case status. Optional.
func WithRecords(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.recordsDSN = dsn
	})
}

// WithMaxPoolLimit caps the per-request PoolLimit a Search may ask for.
// Default: 1000.
func WithMaxPoolLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPool = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
