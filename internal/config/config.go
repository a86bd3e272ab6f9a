package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultTopK is the default number of venues returned per search.
	DefaultTopK = 5

	// DefaultVectorDimension matches the nomic-embed-text embedding size.
	DefaultVectorDimension = 768

	// DefaultGenerateTimeoutSecs bounds one answer-generation model call.
	DefaultGenerateTimeoutSecs = 120
)

// Config holds all configuration for topgo.
type Config struct {
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Data      DataConfig      `mapstructure:"data"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	API       APIConfig       `mapstructure:"api"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// QdrantConfig holds Qdrant vector database connection settings.
type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	GRPCPort   int    `mapstructure:"grpc_port"`
	Collection string `mapstructure:"collection"`
	UseTLS     bool   `mapstructure:"use_tls"`
}

// OllamaConfig holds Ollama generation and embedding settings.
type OllamaConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	EmbedModel string `mapstructure:"embed_model"`
}

// AnthropicConfig holds Anthropic API settings for the anthropic provider.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// String returns a safe representation of AnthropicConfig with the API key masked.
func (c AnthropicConfig) String() string {
	return fmt.Sprintf("AnthropicConfig{APIKey:%s, Model:%s}", maskAPIKey(c.APIKey), c.Model)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// LLMConfig holds generation behavior settings shared across providers.
type LLMConfig struct {
	Provider            string  `mapstructure:"provider"` // "ollama" or "anthropic"
	Temperature         float64 `mapstructure:"temperature"`
	MaxTokens           int     `mapstructure:"max_tokens"`
	GenerateTimeoutSecs int     `mapstructure:"generate_timeout_secs"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	TopK            int    `mapstructure:"top_k"`
	VectorDimension uint64 `mapstructure:"vector_dimension"`
}

// DataConfig holds paths to crawled venue data.
type DataConfig struct {
	VenuesFile string `mapstructure:"venues_file"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.grpc_port", 6334)
	v.SetDefault("qdrant.collection", "hanoi_venues")
	v.SetDefault("qdrant.use_tls", false)

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "qwen2.5:7b")
	v.SetDefault("ollama.embed_model", "nomic-embed-text")

	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.generate_timeout_secs", DefaultGenerateTimeoutSecs)

	v.SetDefault("search.top_k", DefaultTopK)
	v.SetDefault("search.vector_dimension", DefaultVectorDimension)

	v.SetDefault("data.venues_file", "data/venues.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".topgo"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("TOPGO")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("qdrant.host", "TOPGO_QDRANT_HOST")
	_ = v.BindEnv("qdrant.grpc_port", "TOPGO_QDRANT_GRPC_PORT")
	_ = v.BindEnv("ollama.base_url", "TOPGO_OLLAMA_BASE_URL")
	_ = v.BindEnv("llm.provider", "TOPGO_LLM_PROVIDER")
	_ = v.BindEnv("api.listen_addr", "TOPGO_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "TOPGO_API_AUTH_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Qdrant.Host == "" {
		return fmt.Errorf("qdrant.host must not be empty")
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant.collection must not be empty")
	}
	if c.Ollama.BaseURL == "" {
		return fmt.Errorf("ollama.base_url must not be empty")
	}
	switch c.LLM.Provider {
	case "ollama", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", "ollama", "anthropic", c.LLM.Provider)
	}
	if c.LLM.Provider == "anthropic" && c.Anthropic.APIKey == "" {
		return fmt.Errorf("anthropic.api_key must be set when llm.provider is anthropic")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("llm.temperature must be between 0 and 1")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be greater than 0")
	}
	if c.LLM.GenerateTimeoutSecs <= 0 {
		return fmt.Errorf("llm.generate_timeout_secs must be greater than 0")
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be greater than 0")
	}
	if c.Search.VectorDimension == 0 {
		return fmt.Errorf("search.vector_dimension must be greater than 0")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
