package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vecrud/internal/domain"
	domcol "github.com/kailas-cloud/vecrud/internal/domain/collection"
)

// Supported database drivers.
const (
	DriverMemory = "memory"
	DriverValkey = "valkey"
	DriverRedis  = "redis"
	DriverQdrant = "qdrant"
)

// ProviderOpenAI is the OpenAI-compatible embedding provider.
const ProviderOpenAI = "openai"

// Config holds the vecrud configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Collection CollectionConfig `yaml:"collection"`
	Query      QueryConfig      `yaml:"query"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// DatabaseConfig holds vector store settings.
type DatabaseConfig struct {
	Driver           string       `yaml:"driver"` // memory, valkey, redis, qdrant (default: memory)
	Addrs            []string     `yaml:"addrs"`
	Username         string       `yaml:"username"`
	Password         string       `yaml:"password"`
	ReadinessTimeout int          `yaml:"readiness_timeout_sec"`
	Memory           MemoryConfig `yaml:"memory"`
	Qdrant           QdrantConfig `yaml:"qdrant"`
}

// MemoryConfig holds embedded store settings.
type MemoryConfig struct {
	PersistDir string `yaml:"persist_dir"` // empty = in-memory only
	Compress   bool   `yaml:"compress"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider          string  `yaml:"provider"`
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	Dimensions        int     `yaml:"dimensions"`         // model output size
	RequestDimensions int     `yaml:"request_dimensions"` // sent to the API when > 0
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Cache             *bool   `yaml:"cache"`
	CacheTTLSec       int     `yaml:"cache_ttl_sec"` // 0 = no expiry

	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// CacheEnabled reports whether embeddings are cached (default true).
func (e EmbeddingConfig) CacheEnabled() bool {
	return e.Cache == nil || *e.Cache
}

// CollectionConfig holds the collection and HNSW index settings.
type CollectionConfig struct {
	Name            string `yaml:"name"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// QueryConfig holds similarity query limits.
type QueryConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
	MaxTopK     int `yaml:"max_top_k"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
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
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Qdrant.Port <= 0 {
		c.Database.Qdrant.Port = 6334
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	vec := domain.DefaultVectorConfig()
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}
	if c.Collection.Name == "" {
		c.Collection.Name = domcol.DefaultName
	}
	if c.Collection.HNSWM <= 0 {
		c.Collection.HNSWM = 16
	}
	if c.Collection.HNSWEFConstruct <= 0 {
		c.Collection.HNSWEFConstruct = 200
	}
	if c.Query.DefaultTopK <= 0 {
		c.Query.DefaultTopK = 5
	}
	if c.Query.MaxTopK <= 0 {
		c.Query.MaxTopK = 100
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "vecrud:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverQdrant:
		if c.Database.Qdrant.Host == "" {
			return fmt.Errorf("database.qdrant.host is required for driver %q", DriverQdrant)
		}
	default:
		return fmt.Errorf("database.driver must be one of memory, valkey, redis, qdrant, got %q", c.Database.Driver)
	}
	if c.Embedding.Provider != ProviderOpenAI {
		return fmt.Errorf("embedding.provider must be %q, got %q", ProviderOpenAI, c.Embedding.Provider)
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("embedding.requests_per_second must not be negative")
	}
	if c.Embedding.RequestDimensions < 0 {
		return fmt.Errorf("embedding.request_dimensions must not be negative")
	}
	if c.Embedding.RequestDimensions > 0 && c.Embedding.RequestDimensions != c.Embedding.Dimensions {
		return fmt.Errorf("embedding.request_dimensions (%d) must equal embedding.dimensions (%d)",
			c.Embedding.RequestDimensions, c.Embedding.Dimensions)
	}
	if err := domcol.ValidateName(c.Collection.Name); err != nil {
		return fmt.Errorf("collection.name: %w", err)
	}
	if c.Query.DefaultTopK > c.Query.MaxTopK {
		return fmt.Errorf("query.default_top_k (%d) exceeds query.max_top_k (%d)",
			c.Query.DefaultTopK, c.Query.MaxTopK)
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
