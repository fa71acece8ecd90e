// Package config loads the docrag service configuration from per-environment
// YAML files with ${VAR} expansion.
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

// Config holds the docrag API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  ProviderConfig   `yaml:"embedding"`
	Rerank     RerankConfig     `yaml:"rerank"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Session    SessionConfig    `yaml:"session"`
	Cache      CacheConfig      `yaml:"cache"`
	Books      []BookConfig     `yaml:"books"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ProviderConfig holds an OpenAI-compatible provider endpoint and model.
type ProviderConfig struct {
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// RerankConfig holds the reranking provider settings.
type RerankConfig struct {
	Enabled    *bool  `yaml:"enabled"` // default: true
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// GenerationConfig holds the answer generation provider settings.
type GenerationConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// RetrievalConfig holds retrieval pipeline knobs.
type RetrievalConfig struct {
	PerCollectionK       int     `yaml:"per_collection_k"`
	TopK                 int     `yaml:"top_k"`
	CollectionTimeoutSec int     `yaml:"collection_timeout_sec"`
	DedupThreshold       float64 `yaml:"dedup_threshold"`
	TOCBoost             float64 `yaml:"toc_boost"`
}

// SessionConfig holds session lifecycle settings.
type SessionConfig struct {
	IdleTTLMin int `yaml:"idle_ttl_min"`
}

// CacheConfig holds answer cache settings.
type CacheConfig struct {
	Enabled  *bool `yaml:"enabled"` // default: true
	TTLHours int   `yaml:"ttl_hours"`
}

// BookConfig describes one ingested book and the query signals that identify it.
type BookConfig struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Author    string   `yaml:"author"`
	Publisher string   `yaml:"publisher"`
	Signals   []string `yaml:"signals"`
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

// RerankEnabled reports whether reranking is on (default true).
func (c *Config) RerankEnabled() bool {
	return c.Rerank.Enabled == nil || *c.Rerank.Enabled
}

// CacheEnabled reports whether the answer cache is on (default true).
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
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
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Rerank.TimeoutSec <= 0 {
		c.Rerank.TimeoutSec = 15
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 800
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.2
	}
	if c.Retrieval.PerCollectionK <= 0 {
		c.Retrieval.PerCollectionK = 4
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.CollectionTimeoutSec <= 0 {
		c.Retrieval.CollectionTimeoutSec = 5
	}
	if c.Retrieval.DedupThreshold <= 0 {
		c.Retrieval.DedupThreshold = 0.95
	}
	if c.Retrieval.TOCBoost <= 0 {
		c.Retrieval.TOCBoost = 2.0
	}
	if c.Session.IdleTTLMin <= 0 {
		c.Session.IdleTTLMin = 60
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model is required")
	}
	if c.RerankEnabled() && c.Rerank.Model == "" {
		return fmt.Errorf("rerank.model is required when rerank is enabled")
	}
	if len(c.Books) == 0 {
		return fmt.Errorf("at least one book is required")
	}
	seen := make(map[string]bool, len(c.Books))
	for i, b := range c.Books {
		if b.ID == "" {
			return fmt.Errorf("books[%d].id is required", i)
		}
		if b.Title == "" {
			return fmt.Errorf("books[%d].title is required", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("duplicate book id %q", b.ID)
		}
		seen[b.ID] = true
	}
	if c.Retrieval.DedupThreshold > 1 {
		return fmt.Errorf("retrieval.dedup_threshold must be between 0 and 1")
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
