package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mentor.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: milvus
  batch_size: 100
retrieval:
  top_k: 3
  relevance_threshold: 0.5
llm:
  model: llama3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != BackendMilvus || cfg.Store.BatchSize != 100 {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Retrieval.TopK != 3 || cfg.Retrieval.Threshold() != 0.5 {
		t.Errorf("unexpected retrieval config: %+v", cfg.Retrieval)
	}
	if cfg.LLM.Model != "llama3" || cfg.LLM.Provider != ProviderOllama {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_zeroThresholdIsKept(t *testing.T) {
	path := writeConfig(t, `
retrieval:
  relevance_threshold: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Retrieval.Threshold(); got != 0 {
		t.Errorf("Threshold() = %v, want 0", got)
	}
}

func TestLoad_pathsRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
store:
  path: ./db
audit:
  path: logs/audit.log
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if want := filepath.Join(dir, "db"); cfg.Store.Path != want {
		t.Errorf("store.path = %q, want %q", cfg.Store.Path, want)
	}
	if want := filepath.Join(dir, "logs", "audit.log"); cfg.Audit.Path != want {
		t.Errorf("audit.path = %q, want %q", cfg.Audit.Path, want)
	}
}

func TestLoad_missingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := writeConfig(t, "store: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_envOverrides(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://gpu:11434")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MILVUS_ADDRESS", "milvus:19530")
	t.Setenv("MENTOR_STORE_PATH", "/var/lib/mentor")

	cfg, err := Load(writeConfig(t, "debug: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Host != "http://gpu:11434" || cfg.LLM.Host != "http://gpu:11434" {
		t.Errorf("OLLAMA_HOST not applied: embedding=%q llm=%q", cfg.Embedding.Host, cfg.LLM.Host)
	}
	if cfg.LLM.APIKey != "sk-test" || cfg.Embedding.APIKey != "sk-test" {
		t.Error("OPENAI_API_KEY not applied")
	}
	if cfg.Store.Milvus.Address != "milvus:19530" {
		t.Errorf("milvus address = %q", cfg.Store.Milvus.Address)
	}
	if cfg.Store.Path != "/var/lib/mentor" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Chunking.Size != 350 || cfg.Chunking.Overlap != 80 {
		t.Errorf("chunking = %+v, want 350/80", cfg.Chunking)
	}
	if cfg.Retrieval.TopK != 4 || cfg.Retrieval.Threshold() != 0.7 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Store.BatchSize != 5000 || cfg.Store.Backend != BackendBadger {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Embedding.Model != "all-minilm" || cfg.Embedding.Dimension != 384 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.LLM.Model != "mistral" {
		t.Errorf("llm model = %q", cfg.LLM.Model)
	}
	if cfg.Memory.HistorySize != 5 {
		t.Errorf("history size = %d", cfg.Memory.HistorySize)
	}
	if len(cfg.Safety.CrisisKeywords) != len(DefaultCrisisKeywords) {
		t.Errorf("crisis keywords = %v", cfg.Safety.CrisisKeywords)
	}
	if cfg.Audit.Path != "chatbot_interaction.log" {
		t.Errorf("audit path = %q", cfg.Audit.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefault_openAIModels(t *testing.T) {
	cfg := &Config{
		Embedding: EmbeddingConfig{Provider: ProviderOpenAI},
		LLM:       LLMConfig{Provider: ProviderOpenAI},
	}
	ApplyDefaults(cfg)
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimension != 1536 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Embedding.Host != "" || cfg.LLM.Host != "" {
		t.Error("openai providers should not get an ollama host")
	}
}

func TestValidate(t *testing.T) {
	negative := -0.1
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"overlap equals size", func(c *Config) { c.Chunking.Overlap = c.Chunking.Size }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "chroma" }},
		{"zero batch", func(c *Config) { c.Store.BatchSize = -1 }},
		{"unknown embedding provider", func(c *Config) { c.Embedding.Provider = "cohere" }},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "anthropic" }},
		{"unknown template", func(c *Config) { c.Prompt.Template = "pirate" }},
		{"negative threshold", func(c *Config) { c.Retrieval.RelevanceThreshold = &negative }},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 9000}
	if got := s.Addr(); got != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q", got)
	}
}
