package config

const (
	BackendBadger = "badger"
	BackendMilvus = "milvus"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	TemplateMentor  = "mentor"
	TemplateTone    = "tone"
	TemplateGuarded = "guarded"
)

// DefaultRelevanceThreshold is the L2 distance cut-off used by the relevance gate.
const DefaultRelevanceThreshold = 0.7

// DefaultCrisisKeywords trigger the crisis response. The list favours recall:
// benign phrases that contain a keyword are intercepted too.
var DefaultCrisisKeywords = []string{
	"suicide", "kill myself", "want to die", "end it all", "hurt myself",
	"self-harm", "cutting", "overdose", "better off dead",
}

// DefaultCrisisResponse is shown instead of a generated answer when crisis language is detected.
const DefaultCrisisResponse = `IMPORTANT: I hear that you are going through a very difficult time, but I am an AI, not a mental health professional.

If you are in danger or need immediate help, please contact:
- National Suicide Prevention Lifeline: 988 (US)
- Crisis Text Line: Text HOME to 741741
- Go to your nearest emergency room.

I cannot provide crisis support. Please reach out to a human who can help.`

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendBadger
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "store"
	}
	if cfg.Store.BatchSize == 0 {
		cfg.Store.BatchSize = 5000
	}
	if cfg.Store.Milvus.Address == "" {
		cfg.Store.Milvus.Address = "localhost:19530"
	}
	if cfg.Store.Milvus.CollectionName == "" {
		cfg.Store.Milvus.CollectionName = "mentor_chunks"
	}
	if cfg.Store.Milvus.M == 0 {
		cfg.Store.Milvus.M = 16
	}
	if cfg.Store.Milvus.EfConstruction == 0 {
		cfg.Store.Milvus.EfConstruction = 256
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderOllama
	}
	if cfg.Embedding.Model == "" {
		if cfg.Embedding.Provider == ProviderOpenAI {
			cfg.Embedding.Model = "text-embedding-3-small"
		} else {
			cfg.Embedding.Model = "all-minilm"
		}
	}
	if cfg.Embedding.Dimension == 0 {
		if cfg.Embedding.Provider == ProviderOpenAI {
			cfg.Embedding.Dimension = 1536
		} else {
			cfg.Embedding.Dimension = 384
		}
	}
	if cfg.Embedding.Host == "" && cfg.Embedding.Provider == ProviderOllama {
		cfg.Embedding.Host = "http://localhost:11434"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderOllama
	}
	if cfg.LLM.Model == "" {
		if cfg.LLM.Provider == ProviderOpenAI {
			cfg.LLM.Model = "gpt-4o-mini"
		} else {
			cfg.LLM.Model = "mistral"
		}
	}
	if cfg.LLM.Host == "" && cfg.LLM.Provider == ProviderOllama {
		cfg.LLM.Host = "http://localhost:11434"
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = 350
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 80
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Retrieval.RelevanceThreshold == nil {
		t := DefaultRelevanceThreshold
		cfg.Retrieval.RelevanceThreshold = &t
	}
	if cfg.Safety.CrisisKeywords == nil {
		cfg.Safety.CrisisKeywords = append([]string(nil), DefaultCrisisKeywords...)
	}
	if cfg.Safety.CrisisResponse == "" {
		cfg.Safety.CrisisResponse = DefaultCrisisResponse
	}
	if cfg.Prompt.Template == "" {
		cfg.Prompt.Template = TemplateMentor
	}
	if cfg.Memory.HistorySize == 0 {
		cfg.Memory.HistorySize = 5
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "chatbot_interaction.log"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Ingest.DataPaths) == 0 {
		cfg.Ingest.DataPaths = []string{"data"}
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".pdf", ".csv", ".xlsx", ".ndjson", ".jsonl", ".txt", ".md"}
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}
