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

// Config holds the pattern engine configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Classify  ClassifyConfig  `yaml:"classify"`
	Auth      AuthConfig      `yaml:"auth"`
	Artifact  ArtifactConfig  `yaml:"artifact"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Exactly one of APIKeys or
// JWTSecret should be set; if both are empty, auth is disabled.
type AuthConfig struct {
	APIKeys   []string `yaml:"api_keys"`
	JWTSecret string   `yaml:"jwt_secret"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port              int `yaml:"port"`
	ReadTimeoutSec    int `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int `yaml:"write_timeout_sec"`
	ShutdownSec       int `yaml:"shutdown_timeout_sec"`
	RequestTimeoutMs  int `yaml:"request_timeout_ms"`
	MaxInFlight       int `yaml:"max_in_flight"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Dimension    int              `yaml:"dimension"`
	CacheSize    int              `yaml:"cache_size"`
	RemoteBridge RemoteBridgeConfig `yaml:"remote_bridge"`
}

// RemoteBridgeConfig holds the cold-path batch embedder settings used only
// by the Index Loader when re-embedding a patterns-only artifact.
type RemoteBridgeConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ClassifyConfig holds default classification parameters.
type ClassifyConfig struct {
	MaxAlternatives     int     `yaml:"max_alternatives"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// ArtifactConfig holds index artifact source settings.
type ArtifactConfig struct {
	Source string `yaml:"source"` // "file" or "redis" (default: file)
	Path   string `yaml:"path"`
	Redis  RedisArtifactConfig `yaml:"redis"`
}

// RedisArtifactConfig holds settings for the optional Redis-backed
// artifact source.
type RedisArtifactConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	Key      string   `yaml:"key"`
}

// SchedulerConfig holds the optional periodic reload settings.
type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CronSpec string `yaml:"cron_spec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestTimeoutMs <= 0 {
		c.HTTP.RequestTimeoutMs = 2000
	}
	if c.HTTP.MaxInFlight <= 0 {
		c.HTTP.MaxInFlight = 64
	}
	if c.Embedding.Dimension <= 0 {
		c.Embedding.Dimension = 256
	}
	if c.Embedding.CacheSize <= 0 {
		c.Embedding.CacheSize = 4096
	}
	if c.Classify.MaxAlternatives <= 0 {
		c.Classify.MaxAlternatives = 3
	}
	if c.Classify.ConfidenceThreshold <= 0 {
		c.Classify.ConfidenceThreshold = 0.5
	}
	if c.Artifact.Source == "" {
		c.Artifact.Source = "file"
	}
	if c.Scheduler.CronSpec == "" {
		c.Scheduler.CronSpec = "@every 5m"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Classify.ConfidenceThreshold < 0 || c.Classify.ConfidenceThreshold > 1 {
		return fmt.Errorf("classify.confidence_threshold must be between 0 and 1, got %v", c.Classify.ConfidenceThreshold)
	}
	switch c.Artifact.Source {
	case "file":
		if c.Artifact.Path == "" {
			return fmt.Errorf("artifact.path is required when artifact.source is \"file\"")
		}
	case "redis":
		if len(c.Artifact.Redis.Addrs) == 0 {
			return fmt.Errorf("artifact.redis.addrs is required when artifact.source is \"redis\"")
		}
	default:
		return fmt.Errorf("artifact.source must be \"file\" or \"redis\", got %q", c.Artifact.Source)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

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
