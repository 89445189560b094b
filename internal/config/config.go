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

// Config holds the paperdesk API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Cache     CacheConfig     `yaml:"cache"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Scholar   ScholarConfig   `yaml:"scholar"`
	Upload    UploadConfig    `yaml:"upload"`
	Topics    TopicsConfig    `yaml:"topics"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty api_keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds Redis connection and cache lifetime settings.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	SearchTTLHours   int      `yaml:"search_ttl_hours"`
}

// PostgresConfig holds history store settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ScholarConfig holds scholar search client settings.
type ScholarConfig struct {
	BaseURL       string `yaml:"base_url"`
	MaxRetries    int    `yaml:"max_retries"`
	MinDelayMs    int    `yaml:"min_delay_ms"`
	MaxDelayMs    int    `yaml:"max_delay_ms"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	MaxResultsCap int    `yaml:"max_results_cap"`
}

// UploadConfig holds PDF upload constraints and storage location.
type UploadConfig struct {
	Dir          string `yaml:"dir"`
	MaxSizeBytes int64  `yaml:"max_size_bytes"`
}

// TopicsConfig holds topic-generation settings.
type TopicsConfig struct {
	DefaultCount int    `yaml:"default_count"`
	Strategy     string `yaml:"strategy"` // "tfidf" (default) | "embedding"
}

// EmbeddingConfig holds the optional embedding provider used by the
// embedding clustering strategy.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
		// Scholar searches page through remote results with deliberate
		// delays, so responses can take well over a minute.
		c.HTTP.WriteTimeoutSec = 180
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.SearchTTLHours <= 0 {
		c.Cache.SearchTTLHours = 24
	}
	if c.Scholar.BaseURL == "" {
		c.Scholar.BaseURL = "https://scholar.google.com"
	}
	if c.Scholar.MaxRetries <= 0 {
		c.Scholar.MaxRetries = 3
	}
	if c.Scholar.MinDelayMs <= 0 {
		c.Scholar.MinDelayMs = 2000
	}
	if c.Scholar.MaxDelayMs <= 0 {
		c.Scholar.MaxDelayMs = 5000
	}
	if c.Scholar.TimeoutSec <= 0 {
		c.Scholar.TimeoutSec = 30
	}
	if c.Scholar.MaxResultsCap <= 0 {
		c.Scholar.MaxResultsCap = 100
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = "data/papers"
	}
	if c.Upload.MaxSizeBytes <= 0 {
		c.Upload.MaxSizeBytes = 20 << 20
	}
	if c.Topics.DefaultCount <= 0 {
		c.Topics.DefaultCount = 5
	}
	if c.Topics.Strategy == "" {
		c.Topics.Strategy = "tfidf"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.Scholar.MinDelayMs > c.Scholar.MaxDelayMs {
		return fmt.Errorf("scholar.min_delay_ms %d exceeds scholar.max_delay_ms %d",
			c.Scholar.MinDelayMs, c.Scholar.MaxDelayMs)
	}
	switch c.Topics.Strategy {
	case "tfidf", "embedding":
	default:
		return fmt.Errorf("topics.strategy must be \"tfidf\" or \"embedding\", got %q", c.Topics.Strategy)
	}
	if c.Topics.Strategy == "embedding" && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required for the embedding strategy")
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
