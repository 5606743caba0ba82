package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sustactical/squadlink/pkg/models"
)

// ErrMissingAPIKey is returned by Validate when no upstream key is configured.
var ErrMissingAPIKey = errors.New("missing upstream API key (set GEMINI_API_KEY or upstream.api_key)")

// Config holds all squadlink configuration.
type Config struct {
	Listen    string             `yaml:"listen"`
	DBPath    string             `yaml:"db_path"`
	Upstream  UpstreamConfig     `yaml:"upstream"`
	Retry     RetryConfig        `yaml:"retry"`
	Cache     CacheConfig        `yaml:"cache"`
	Audit     models.AuditConfig `yaml:"audit"`
	Simulator SimulatorConfig    `yaml:"simulator"`
	CORS      CORSConfig         `yaml:"cors"`
}

// UpstreamConfig selects the generative-language provider.
// Provider is "gemini" (default) or "openai".
type UpstreamConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RetryConfig controls backoff on rate-limited upstream calls.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// CacheConfig controls the analysis and briefing caches.
// Backend is "memory" (default) or "sqlite", which stores entries in db_path.
type CacheConfig struct {
	Backend     string        `yaml:"backend"`
	AnalysisTTL time.Duration `yaml:"analysis_ttl"`
	BriefingTTL time.Duration `yaml:"briefing_ttl"`
}

// SimulatorConfig controls the roster telemetry simulator.
type SimulatorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":4000",
		DBPath: "squadlink.db",
		Upstream: UpstreamConfig{
			Provider: "gemini",
			Timeout:  30 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries:   2,
			InitialDelay: 2 * time.Second,
		},
		Cache: CacheConfig{
			Backend:     "memory",
			AnalysisTTL: 5 * time.Minute,
			BriefingTTL: 2 * time.Minute,
		},
		Audit: models.AuditConfig{
			Driver:        "sqlite",
			RetentionDays: 90,
		},
		Simulator: SimulatorConfig{
			Enabled:  true,
			Interval: 4 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// LoadEnvFiles loads .env.local and then .env into the process environment.
// Variables already set are never overridden, and missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env.local", ".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads a YAML config file and expands environment variables.
// A missing file yields the defaults. Environment fallbacks are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Upstream.APIKey == "" {
		keys := []string{"GEMINI_API_KEY", "API_KEY"}
		if c.Upstream.Provider == "openai" {
			keys = []string{"OPENAI_API_KEY", "API_KEY"}
		}
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				c.Upstream.APIKey = v
				break
			}
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Listen == Default().Listen {
		c.Listen = ":" + port
	}
	if c.Audit.DSN == "" && (c.Audit.Driver == "" || c.Audit.Driver == "sqlite") {
		c.Audit.DSN = c.DBPath
	}
}

// Validate checks settings required to serve requests.
func (c *Config) Validate() error {
	if c.Upstream.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.Upstream.Provider {
	case "", "gemini", "openai":
	default:
		return fmt.Errorf("unknown upstream provider %q", c.Upstream.Provider)
	}
	switch c.Cache.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0, got %d", c.Retry.MaxRetries)
	}
	return nil
}
