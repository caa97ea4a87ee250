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

// Config holds the vecluster API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Summary    SummaryConfig    `yaml:"summary"`
	Clustering ClusteringConfig `yaml:"clustering"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
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
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds budget store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, none (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a store is configured.
func (d DatabaseConfig) Enabled() bool { return d.Driver != DriverNone }

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverNone   = "none"
)

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// ClusteringConfig holds pipeline limits.
type ClusteringConfig struct {
	VocabularySize int `yaml:"vocabulary_size"`
	MaxIterations  int `yaml:"max_iterations"`
	MaxDocuments   int `yaml:"max_documents"`
}

// SummaryConfig holds remote summarization settings.
type SummaryConfig struct {
	Provider       string       `yaml:"provider"`
	APIKey         string       `yaml:"api_key"` // empty = rule-based summaries only
	BaseURL        string       `yaml:"base_url"`
	Model          string       `yaml:"model"`
	MaxTokens      int          `yaml:"max_tokens"`
	Temperature    *float32     `yaml:"temperature"`
	TimeoutSec     int          `yaml:"timeout_sec"`
	MaxConcurrency int          `yaml:"max_concurrency"`
	Budget         BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
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
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverNone
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "vecluster:"
	}
	if c.Summary.Provider == "" {
		c.Summary.Provider = "openai"
	}
	if c.Summary.Model == "" {
		c.Summary.Model = "gpt-4o-mini"
	}
	if c.Summary.MaxTokens <= 0 {
		c.Summary.MaxTokens = 150
	}
	if c.Summary.Temperature == nil {
		t := float32(0.7)
		c.Summary.Temperature = &t
	}
	if c.Summary.TimeoutSec <= 0 {
		c.Summary.TimeoutSec = 10
	}
	if c.Summary.MaxConcurrency <= 0 {
		c.Summary.MaxConcurrency = 4
	}
	if c.Clustering.VocabularySize <= 0 {
		c.Clustering.VocabularySize = 100
	}
	if c.Clustering.MaxIterations <= 0 {
		c.Clustering.MaxIterations = 100
	}
	if c.Clustering.MaxDocuments <= 0 {
		c.Clustering.MaxDocuments = 1000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverNone:
	default:
		return fmt.Errorf("database.driver must be \"redis\", \"valkey\" or \"none\", got %q", c.Database.Driver)
	}
	switch c.Summary.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"summary.budget.action must be \"warn\" or \"reject\", got %q",
			c.Summary.Budget.Action,
		)
	}
	if t := c.Summary.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("summary.temperature must be between 0 and 2, got %v", *t)
	}
	if c.Summary.TimeoutSec >= c.HTTP.WriteTimeoutSec {
		return fmt.Errorf("summary.timeout_sec (%d) must be below http.write_timeout_sec (%d)",
			c.Summary.TimeoutSec, c.HTTP.WriteTimeoutSec)
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
