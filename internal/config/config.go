package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lagunalab/cartodex/internal/domain/search/request"
)

// Config holds the cartodex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	Heatmap   HeatmapConfig   `yaml:"heatmap"`
	Logging   LoggingConfig   `yaml:"logging"`
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

// QdrantConfig holds vector store connection and collection settings.
type QdrantConfig struct {
	Addr             string `yaml:"addr"`
	APIKey           string `yaml:"api_key"`
	MapCollection    string `yaml:"map_collection"`
	DocCollection    string `yaml:"doc_collection"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// ProviderConfig holds one embedding provider's settings.
type ProviderConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// EmbeddingConfig holds both encoder endpoints: the semantic-text encoder for
// the document space and the joint visual/text encoder for the map space.
type EmbeddingConfig struct {
	Text   ProviderConfig `yaml:"text"`
	Vision ProviderConfig `yaml:"vision"`
}

// CacheConfig holds the optional Redis query-embedding cache settings.
// An empty Addr disables caching.
type CacheConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLSec   int    `yaml:"ttl_sec"`
}

// SearchConfig holds the fusion pipeline tuning. The floors and relative
// threshold are empirically tuned per encoder, not correctness invariants.
type SearchConfig struct {
	DocMinScore      float64 `yaml:"doc_min_score"`
	MapMinScore      float64 `yaml:"map_min_score"`
	DocImageMinScore float64 `yaml:"doc_image_min_score"`
	MapImageMinScore float64 `yaml:"map_image_min_score"`
	// RelativeThreshold is the server-side default for the post-normalization
	// cutoff when a request does not carry one. A pointer so that an explicit
	// 0 (keep every above-mean item) survives defaulting.
	RelativeThreshold *float64 `yaml:"relative_threshold"`
	OverfetchFactor   int      `yaml:"overfetch_factor"`
	TimeoutSec        int      `yaml:"timeout_sec"`
	HNSWEf            int      `yaml:"hnsw_ef"`
}

// HeatmapConfig holds the heatmap pipeline tuning.
type HeatmapConfig struct {
	DocMinScore float64 `yaml:"doc_min_score"`
	MapMinScore float64 `yaml:"map_min_score"`
	MapBoost    float64 `yaml:"map_boost"`
	MaxPoints   int     `yaml:"max_points"`
	MaxBinary   int     `yaml:"max_binary_points"`
	TimeoutSec  int     `yaml:"timeout_sec"`
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

// ApplyDefaults fills empty fields with default values. The score floors
// default to the empirically tuned values for the MiniLM-class text encoder
// and the CLIP-class joint encoder.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Qdrant.MapCollection == "" {
		c.Qdrant.MapCollection = "venice_historical_map"
	}
	if c.Qdrant.DocCollection == "" {
		c.Qdrant.DocCollection = "venice_historical_text"
	}
	if c.Qdrant.ReadinessTimeout <= 0 {
		c.Qdrant.ReadinessTimeout = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Search.DocMinScore == 0 {
		c.Search.DocMinScore = 0.45
	}
	if c.Search.MapMinScore == 0 {
		c.Search.MapMinScore = 0.18
	}
	if c.Search.DocImageMinScore == 0 {
		c.Search.DocImageMinScore = 0.22
	}
	if c.Search.MapImageMinScore == 0 {
		c.Search.MapImageMinScore = 0.40
	}
	if c.Search.RelativeThreshold == nil {
		v := request.DefaultThreshold
		c.Search.RelativeThreshold = &v
	}
	if c.Search.OverfetchFactor <= 0 {
		c.Search.OverfetchFactor = 2
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 15
	}
	if c.Search.HNSWEf <= 0 {
		c.Search.HNSWEf = 32
	}
	if c.Heatmap.DocMinScore == 0 {
		c.Heatmap.DocMinScore = 0.35
	}
	if c.Heatmap.MapMinScore == 0 {
		c.Heatmap.MapMinScore = 0.20
	}
	if c.Heatmap.MapBoost == 0 {
		c.Heatmap.MapBoost = 1.1
	}
	if c.Heatmap.MaxPoints <= 0 {
		c.Heatmap.MaxPoints = 5000
	}
	if c.Heatmap.MaxBinary <= 0 {
		c.Heatmap.MaxBinary = 20000
	}
	if c.Heatmap.TimeoutSec <= 0 {
		c.Heatmap.TimeoutSec = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Qdrant.Addr == "" {
		return fmt.Errorf("qdrant.addr is required")
	}
	if c.Embedding.Text.BaseURL == "" {
		return fmt.Errorf("embedding.text.base_url is required")
	}
	if c.Embedding.Vision.BaseURL == "" {
		return fmt.Errorf("embedding.vision.base_url is required")
	}
	if c.Search.OverfetchFactor < 1 {
		return fmt.Errorf("search.overfetch_factor must be >= 1, got %d", c.Search.OverfetchFactor)
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
