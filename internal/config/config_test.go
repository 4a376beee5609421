package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Records:  RecordsConfig{DSN: "data/cases.db"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "memcached" }, "database.driver"},
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"negative weight", func(c *Config) { c.Retrieval.WeightFace = -1 }, "non-negative"},
		{"top_n above max", func(c *Config) { c.Retrieval.TopN = 60 }, "max_top_n"},
		{"pool_limit above max", func(c *Config) { c.Retrieval.PoolLimit = 5000 }, "max_pool_limit"},
		{"negative timeout", func(c *Config) { c.Retrieval.SpaceTimeoutMS = -5 }, "space_timeout_ms"},
		{"missing records dsn", func(c *Config) { c.Records.DSN = "" }, "records.dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected driver valkey, got %s", cfg.Database.Driver)
	}
	if cfg.Spaces.FaceDimensions != 512 || cfg.Spaces.TextDimensions != 384 {
		t.Errorf("unexpected dimensions %d/%d", cfg.Spaces.FaceDimensions, cfg.Spaces.TextDimensions)
	}
	if cfg.Spaces.HNSWM != 16 || cfg.Spaces.HNSWEFConstruct != 200 {
		t.Errorf("unexpected HNSW defaults %d/%d", cfg.Spaces.HNSWM, cfg.Spaces.HNSWEFConstruct)
	}
	if cfg.Retrieval.WeightFace != 0.6 || cfg.Retrieval.WeightText != 0.4 {
		t.Errorf("unexpected weights %g/%g", cfg.Retrieval.WeightFace, cfg.Retrieval.WeightText)
	}
	if cfg.Retrieval.TopN != 10 || cfg.Retrieval.MaxTopN != 50 || cfg.Retrieval.PoolLimit != 50 ||
		cfg.Retrieval.MaxPoolLimit != 1000 {
		t.Errorf("unexpected retrieval limits %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.SpaceTimeoutMS != 0 {
		t.Errorf("space timeout should stay disabled, got %d", cfg.Retrieval.SpaceTimeoutMS)
	}
	if cfg.HTTP.MaxBodyBytes != 10<<20 {
		t.Errorf("unexpected max body %d", cfg.HTTP.MaxBodyBytes)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Database:  DatabaseConfig{Driver: "redis"},
		Spaces:    SpacesConfig{FaceDimensions: 128},
		Retrieval: RetrievalConfig{WeightFace: 1, TopN: 3},
	}
	cfg.ApplyDefaults()

	if cfg.Database.Driver != "redis" {
		t.Errorf("driver overridden: %s", cfg.Database.Driver)
	}
	if cfg.Spaces.FaceDimensions != 128 {
		t.Errorf("face dimensions overridden: %d", cfg.Spaces.FaceDimensions)
	}
	// an explicit face-only weighting keeps the zero text weight
	if cfg.Retrieval.WeightFace != 1 || cfg.Retrieval.WeightText != 0 {
		t.Errorf("weights overridden: %g/%g", cfg.Retrieval.WeightFace, cfg.Retrieval.WeightText)
	}
	if cfg.Retrieval.TopN != 3 {
		t.Errorf("top_n overridden: %d", cfg.Retrieval.TopN)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("CASEMATCH_TEST_PORT", "9090")

	cfg, err := Parse([]byte(`
http:
  port: ${CASEMATCH_TEST_PORT}
database:
  addrs: ["${CASEMATCH_TEST_VALKEY:-localhost:6379}"]
records:
  dsn: cases.db
embedding:
  document_instruction: "passage: "
  query_instruction: "query: "
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.DocumentInstruction != "passage: " || cfg.Embedding.QueryInstruction != "query: " {
		t.Errorf("instructions = %q/%q", cfg.Embedding.DocumentInstruction, cfg.Embedding.QueryInstruction)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addr = %q", cfg.Database.Addrs[0])
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	body := "http:\n  port: 8081\ndatabase:\n  addrs: [\"valkey:6379\"]\nrecords:\n  dsn: cases.db\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CASEMATCH_SET", "value")
	got := string(expandEnvVars([]byte("a=${CASEMATCH_SET} b=${CASEMATCH_UNSET:-fallback} c=${CASEMATCH_UNSET}")))
	want := "a=value b=fallback c="
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
