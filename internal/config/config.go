package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppInfo holds basic application information.
type AppInfo struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"` // e.g. "development", "production"
}

// LoggerConfig configures the log level.
type LoggerConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// ServerConfig configures the HTTP surface and local document storage.
type ServerConfig struct {
	Address   string `yaml:"address"`   // listen address, e.g. ":8000"
	UploadDir string `yaml:"uploadDir"` // directory for uploaded PDFs
}

// ChunkingConfig holds the text chunker parameters. Overlap must stay
// below Size or the chunker cannot advance.
type ChunkingConfig struct {
	Size         int `yaml:"size"`
	Overlap      int `yaml:"overlap"`
	MinChunkSize int `yaml:"minChunkSize"`
}

// ChatConfig bounds the conversational behaviour of the service.
type ChatConfig struct {
	MaxContextMessages int `yaml:"maxContextMessages"` // history window sent to the LLM
	TopK               int `yaml:"topK"`               // retrieval hits per question
}

// OpenAIConfig holds connection settings for OpenAI-backed providers.
// APIKey is normally injected from the OPENAI_API_KEY environment variable.
type OpenAIConfig struct {
	APIKey      string  `yaml:"apiKey"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// LLMConfig selects and configures the chat-completion provider.
type LLMConfig struct {
	Provider string       `yaml:"provider"` // currently "openai"
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"` // currently "openai"
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// MilvusConfig holds the vector database connection settings.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
	Dim        int    `yaml:"dim"` // embedding dimensionality
}

// MongoConfig holds the session archive connection settings.
type MongoConfig struct {
	Address    string `yaml:"address"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// DatabaseConfigs groups all database connections.
type DatabaseConfigs struct {
	Milvus  MilvusConfig `yaml:"milvus"`
	MongoDB MongoConfig  `yaml:"mongodb"`
}

// AppConfig is the root of the yaml configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Logger    LoggerConfig    `yaml:"logger"`
	Server    ServerConfig    `yaml:"server"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Chat      ChatConfig      `yaml:"chat"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Databases DatabaseConfigs `yaml:"databases"`
}

// LoadConfig reads the yaml configuration from path. A .env file next to
// the working directory is loaded first (missing files are fine), and
// secrets from the environment override yaml values.
func LoadConfig(path string) (*AppConfig, error) {
	// .env is optional; environment variables always win.
	_ = godotenv.Load()

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Chunking.Size == 0 {
		c.Chunking.Size = 1500
	}
	if c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = 300
	}
	if c.Chunking.MinChunkSize == 0 {
		c.Chunking.MinChunkSize = 200
	}
	if c.Chat.MaxContextMessages == 0 {
		c.Chat.MaxContextMessages = 10
	}
	if c.Chat.TopK == 0 {
		c.Chat.TopK = 5
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gpt-4o-mini"
	}
	if c.LLM.OpenAI.Temperature == 0 {
		c.LLM.OpenAI.Temperature = 0.3
	}
	if c.LLM.OpenAI.MaxTokens == 0 {
		c.LLM.OpenAI.MaxTokens = 500
	}
	if c.Embedding.OpenAI.Model == "" {
		c.Embedding.OpenAI.Model = "text-embedding-3-small"
	}
	if c.Databases.Milvus.Collection == "" {
		c.Databases.Milvus.Collection = "legal_documents"
	}
	if c.Databases.Milvus.Dim == 0 {
		c.Databases.Milvus.Dim = 1536
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8000"
	}
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = "data/uploads"
	}
}

func (c *AppConfig) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.OpenAI.APIKey = key
		c.Embedding.OpenAI.APIKey = key
	}
	if addr := os.Getenv("MILVUS_ADDRESS"); addr != "" {
		c.Databases.Milvus.Address = addr
	}
	if addr := os.Getenv("MONGO_ADDRESS"); addr != "" {
		c.Databases.MongoDB.Address = addr
	}
}
