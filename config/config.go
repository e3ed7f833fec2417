package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingDatabaseURL is returned when no vector store connection string is configured
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

	// ErrMissingAPIKey is returned when no model API key is configured
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")
)

// Config holds application configuration
type Config struct {
	Database struct {
		ConnectionString string `yaml:"connection_string"`
		Table            string `yaml:"table"`
	} `yaml:"database"`
	Gemini struct {
		APIKey    string `yaml:"-"`
		BaseURL   string `yaml:"base_url"`
		ChatModel string `yaml:"chat_model"`
	} `yaml:"gemini"`
	Embeddings struct {
		TextModel         string  `yaml:"text_model"`
		Dimension         int     `yaml:"dimension"`
		BatchSize         int     `yaml:"batch_size"`
		Workers           int     `yaml:"workers"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"embeddings"`
	Processing struct {
		ChunkSize        int `yaml:"chunk_size"`
		ChunkOverlap     int `yaml:"chunk_overlap"`
		TopK             int `yaml:"top_k"`
		MaxContextTokens int `yaml:"max_context_tokens"`
	} `yaml:"processing"`
	Retry struct {
		MaxRetries int           `yaml:"max_retries"`
		Delay      time.Duration `yaml:"delay"`
	} `yaml:"retry"`
	Memory struct {
		Backend    string `yaml:"backend"` // "memory" or "badger"
		MaxTurns   int    `yaml:"max_turns"`
		BadgerPath string `yaml:"badger_path"`
	} `yaml:"memory"`
	Server struct {
		Port      int    `yaml:"port"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`
	Paths struct {
		SourceDocument string `yaml:"source_document"`
	} `yaml:"paths"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads an optional .env file, then the YAML config file, then environment overrides.
// Missing files are not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := Default()

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Path returns the YAML config location, overridable with BP_ASSISTANT_CONFIG
func Path() string {
	if p := os.Getenv("BP_ASSISTANT_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// Save writes the configuration as YAML. Secrets are never written.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks required settings for serving and ingestion
func (c *Config) Validate() error {
	if c.Database.ConnectionString == "" {
		return ErrMissingDatabaseURL
	}
	if c.Gemini.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Processing.ChunkSize <= 0 || c.Processing.ChunkOverlap < 0 || c.Processing.ChunkOverlap >= c.Processing.ChunkSize {
		return fmt.Errorf("invalid chunking: size=%d overlap=%d", c.Processing.ChunkSize, c.Processing.ChunkOverlap)
	}
	if c.Memory.MaxTurns <= 0 {
		return fmt.Errorf("memory.max_turns must be positive, got %d", c.Memory.MaxTurns)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Database.Table = "bp_docs"
	cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	cfg.Gemini.ChatModel = "gemini-2.0-flash"
	cfg.Embeddings.TextModel = "text-embedding-004"
	cfg.Embeddings.Dimension = 768
	cfg.Embeddings.BatchSize = 16
	cfg.Embeddings.Workers = 4
	cfg.Embeddings.RequestsPerSecond = 5
	cfg.Processing.ChunkSize = 500
	cfg.Processing.ChunkOverlap = 50
	cfg.Processing.TopK = 3
	cfg.Processing.MaxContextTokens = 2000
	cfg.Retry.MaxRetries = 1
	cfg.Retry.Delay = 3 * time.Second
	cfg.Memory.Backend = "memory"
	cfg.Memory.MaxTurns = 10
	cfg.Memory.BadgerPath = filepath.Join("data", "sessions")
	cfg.Server.Port = 3000
	cfg.Server.StaticDir = "public"
	cfg.Paths.SourceDocument = filepath.Join("data", "bp.pdf")
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	return cfg
}

func (c *Config) applyEnv() {
	c.Database.ConnectionString = getEnv("DATABASE_URL", c.Database.ConnectionString)
	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
