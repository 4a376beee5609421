package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the casematch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Spaces    SpacesConfig    `yaml:"spaces"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Face      FaceConfig      `yaml:"face"`
	Records   RecordsConfig   `yaml:"records"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// DatabaseConfig holds similarity index connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SpacesConfig holds the vector width of each space and the HNSW build settings.
type SpacesConfig struct {
	FaceDimensions  int `yaml:"face_dimensions"`
	TextDimensions  int `yaml:"text_dimensions"`
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// RetrievalConfig holds search defaults and limits.
type RetrievalConfig struct {
	WeightFace     float64 `yaml:"weight_face"`
	WeightText     float64 `yaml:"weight_text"`
	TopN           int     `yaml:"top_n"`
	MaxTopN        int     `yaml:"max_top_n"`
	PoolLimit      int     `yaml:"pool_limit"`
	MaxPoolLimit   int     `yaml:"max_pool_limit"`
	SpaceTimeoutMS int     `yaml:"space_timeout_ms"` // 0 = bounded by the request only
}

// EmbeddingConfig holds text embedding provider settings.
type EmbeddingConfig struct {
	Provider string      `yaml:"provider"`
	APIKey   string      `yaml:"api_key"`
	BaseURL  string      `yaml:"base_url"`
	Model    string      `yaml:"model"`
	Cache    CacheConfig `yaml:"cache"`

	// Prefixes for asymmetric models, e.g. "passage: " and "query: ".
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"` // 0 = no expiry
}

// FaceConfig holds face embedding service settings. An empty endpoint disables photo input.
type FaceConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
	PhotoDir   string `yaml:"photo_dir"` // base directory of record profile photos, used by ingest
}

// RecordsConfig holds the case record database settings.
type RecordsConfig struct {
	DSN string `yaml:"dsn"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML with ${VAR} substitution, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 10 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Spaces.FaceDimensions <= 0 {
		c.Spaces.FaceDimensions = 512
	}
	if c.Spaces.TextDimensions <= 0 {
		c.Spaces.TextDimensions = 384
	}
	if c.Spaces.HNSWM <= 0 {
		c.Spaces.HNSWM = 16
	}
	if c.Spaces.HNSWEFConstruct <= 0 {
		c.Spaces.HNSWEFConstruct = 200
	}
	if c.Retrieval.WeightFace == 0 && c.Retrieval.WeightText == 0 {
		c.Retrieval.WeightFace = 0.6
		c.Retrieval.WeightText = 0.4
	}
	if c.Retrieval.TopN <= 0 {
		c.Retrieval.TopN = 10
	}
	if c.Retrieval.MaxTopN <= 0 {
		c.Retrieval.MaxTopN = 50
	}
	if c.Retrieval.PoolLimit <= 0 {
		c.Retrieval.PoolLimit = 50
	}
	if c.Retrieval.MaxPoolLimit <= 0 {
		c.Retrieval.MaxPoolLimit = 1000
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Face.TimeoutSec <= 0 {
		c.Face.TimeoutSec = 15
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Retrieval.WeightFace < 0 || c.Retrieval.WeightText < 0 {
		return fmt.Errorf("retrieval weights must be non-negative, got %g/%g",
			c.Retrieval.WeightFace, c.Retrieval.WeightText)
	}
	if c.Retrieval.TopN > c.Retrieval.MaxTopN {
		return fmt.Errorf("retrieval.top_n (%d) exceeds retrieval.max_top_n (%d)",
			c.Retrieval.TopN, c.Retrieval.MaxTopN)
	}
	if c.Retrieval.PoolLimit > c.Retrieval.MaxPoolLimit {
		return fmt.Errorf("retrieval.pool_limit (%d) exceeds retrieval.max_pool_limit (%d)",
			c.Retrieval.PoolLimit, c.Retrieval.MaxPoolLimit)
	}
	if c.Retrieval.SpaceTimeoutMS < 0 {
		return fmt.Errorf("retrieval.space_timeout_ms must be non-negative, got %d", c.Retrieval.SpaceTimeoutMS)
	}
	if c.Records.DSN == "" {
		return fmt.Errorf("records.dsn is required")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
