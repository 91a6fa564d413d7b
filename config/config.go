package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Embedding EmbeddingConfig
	Search    SearchConfig
	Training  TrainingConfig
	Storage   StorageConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmbeddingConfig holds the embedding backend configuration. The backend is
// any OpenAI-compatible embeddings endpoint serving a multilingual model.
type EmbeddingConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	BatchSize         int     `mapstructure:"batch_size"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// SearchConfig holds ranking configuration. Weights blend the neural and
// fuzzy components of a result's score; MinScore drops results below the
// floor instead of returning them.
type SearchConfig struct {
	NeuralWeight float64 `mapstructure:"neural_weight"`
	FuzzyWeight  float64 `mapstructure:"fuzzy_weight"`
	MinScore     float64 `mapstructure:"min_score"`
	DefaultLimit int     `mapstructure:"default_limit"`
	MaxLimit     int     `mapstructure:"max_limit"`
}

// TrainingConfig bounds training runs.
type TrainingConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	PoolSize int           `mapstructure:"pool_size"`
}

// StorageConfig selects where trained indexes live. "memory" keeps them in
// process; "badger" persists them across restarts.
type StorageConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/neuralsearch/")

	// Environment variable settings. NEURALSEARCH_SERVER_PORT overrides
	// server.port, and so on.
	v.SetEnvPrefix("NEURALSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Embedding defaults. The model name matches the multilingual
	// sentence-transformers model the service was tuned against.
	v.SetDefault("embedding.base_url", "http://localhost:8090/v1")
	v.SetDefault("embedding.model", "paraphrase-multilingual-MiniLM-L12-v2")
	v.SetDefault("embedding.batch_size", 64)
	v.SetDefault("embedding.requests_per_second", 10.0)
	v.SetDefault("embedding.burst", 20)

	// Search defaults: 70% neural, 30% fuzzy, top 5 results, no score floor
	v.SetDefault("search.neural_weight", 0.7)
	v.SetDefault("search.fuzzy_weight", 0.3)
	v.SetDefault("search.min_score", 0.0)
	v.SetDefault("search.default_limit", 5)
	v.SetDefault("search.max_limit", 50)

	// Training defaults
	v.SetDefault("training.timeout", "120s")
	v.SetDefault("training.pool_size", 4)

	// Storage defaults
	v.SetDefault("storage.type", "badger")
	v.SetDefault("storage.path", "./data/models")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding base URL is required (set NEURALSEARCH_EMBEDDING_BASE_URL)")
	}
	if config.Embedding.Model == "" {
		return fmt.Errorf("embedding model is required (set NEURALSEARCH_EMBEDDING_MODEL)")
	}

	if config.Search.NeuralWeight < 0 || config.Search.FuzzyWeight < 0 {
		return fmt.Errorf("search weights must be non-negative, got neural=%v fuzzy=%v",
			config.Search.NeuralWeight, config.Search.FuzzyWeight)
	}
	if sum := config.Search.NeuralWeight + config.Search.FuzzyWeight; math.Abs(sum) < 1e-9 {
		return fmt.Errorf("at least one search weight must be positive")
	}
	if config.Search.MinScore < 0 || config.Search.MinScore > 1 {
		return fmt.Errorf("search min_score must be in [0,1], got: %v", config.Search.MinScore)
	}

	if config.Training.Timeout <= 0 {
		return fmt.Errorf("training timeout must be positive, got: %v", config.Training.Timeout)
	}

	if config.Storage.Type != "memory" && config.Storage.Type != "badger" {
		return fmt.Errorf("storage type must be 'memory' or 'badger', got: %s", config.Storage.Type)
	}
	if config.Storage.Type == "badger" && config.Storage.Path == "" {
		return fmt.Errorf("storage path is required when storage type is 'badger'")
	}

	return nil
}
