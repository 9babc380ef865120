// Package config provides configuration loading and structs for the mentor CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "mentor.yaml"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Safety    SafetyConfig    `yaml:"safety"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Memory    MemoryConfig    `yaml:"memory"`
	Audit     AuditConfig     `yaml:"audit"`
	Server    ServerConfig    `yaml:"server"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	// Backend is "badger" (local, on-disk) or "milvus".
	Backend string `yaml:"backend"`
	// Path is the on-disk directory of the badger store. Reset deletes its contents.
	Path string `yaml:"path"`
	// BatchSize bounds how many new chunks are embedded and inserted per write.
	BatchSize int          `yaml:"batch_size"`
	Milvus    MilvusConfig `yaml:"milvus"`
}

// MilvusConfig holds Milvus connection and collection settings.
type MilvusConfig struct {
	Address        string `yaml:"address"`
	CollectionName string `yaml:"collection"`
	M              int    `yaml:"hnsw_m"`
	EfConstruction int    `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Host      string `yaml:"host"`
	Dimension int    `yaml:"dimension"`
	APIKey    string `yaml:"-"`
}

// LLMConfig holds generation provider settings.
type LLMConfig struct {
	// Provider is "ollama" or "openai".
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Host        string  `yaml:"host"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	APIKey      string  `yaml:"-"`
}

// ChunkingConfig holds text splitter parameters, in characters.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig holds similarity search and relevance gate settings.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `yaml:"top_k"`
	// RelevanceThreshold is the maximum distance of the best hit for the
	// retrieved context to count as relevant. Lower distance means more similar.
	RelevanceThreshold *float64 `yaml:"relevance_threshold"`
}

// Threshold returns the relevance threshold, defaulting when unset.
func (r RetrievalConfig) Threshold() float64 {
	if r.RelevanceThreshold == nil {
		return DefaultRelevanceThreshold
	}
	return *r.RelevanceThreshold
}

// SafetyConfig holds the crisis tripwire settings.
type SafetyConfig struct {
	// CrisisKeywords are matched as case-insensitive substrings of user input.
	CrisisKeywords []string `yaml:"crisis_keywords"`
	// CrisisResponse replaces generation when a keyword matches.
	CrisisResponse string `yaml:"crisis_response"`
}

// PromptConfig selects the prompt template variant.
type PromptConfig struct {
	// Template is "mentor", "tone" or "guarded".
	Template string `yaml:"template"`
}

// MemoryConfig holds session memory settings.
type MemoryConfig struct {
	HistorySize int `yaml:"history_size"`
}

// AuditConfig holds the audit log location.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IngestConfig holds ingestion defaults.
type IngestConfig struct {
	DataPaths  []string `yaml:"data_paths"`
	Extensions []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, applies defaults and environment
// overrides. A missing file at the default path is not an error; defaults are used.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		configDir := filepath.Dir(path)
		cfg.Store.Path = expandPath(cfg.Store.Path, configDir)
		cfg.Audit.Path = expandPath(cfg.Audit.Path, configDir)
	case os.IsNotExist(err) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	ApplyDefaults(&cfg)
	ApplyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		if cfg.Embedding.Provider == ProviderOllama {
			cfg.Embedding.Host = v
		}
		if cfg.LLM.Provider == ProviderOllama {
			cfg.LLM.Host = v
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("MILVUS_ADDRESS"); v != "" {
		cfg.Store.Milvus.Address = v
	}
	if v := os.Getenv("MENTOR_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendBadger, BackendMilvus:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Store.BatchSize <= 0 {
		return fmt.Errorf("%w: store.batch_size must be positive", ErrInvalidConfig)
	}
	if !knownProvider(c.Embedding.Provider) {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfig, c.Embedding.Provider)
	}
	if !knownProvider(c.LLM.Provider) {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, c.LLM.Provider)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("%w: embedding.dimension must be positive", ErrInvalidConfig)
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap (%d) must be smaller than chunking.size (%d)",
			ErrInvalidConfig, c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.Threshold() < 0 {
		return fmt.Errorf("%w: retrieval.relevance_threshold must not be negative", ErrInvalidConfig)
	}
	switch c.Prompt.Template {
	case TemplateMentor, TemplateTone, TemplateGuarded:
	default:
		return fmt.Errorf("%w: unknown prompt template %q", ErrInvalidConfig, c.Prompt.Template)
	}
	return nil
}

func knownProvider(p string) bool {
	return p == ProviderOllama || p == ProviderOpenAI
}

// expandPath makes relative paths relative to the config file's directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}
