// Package config loads the application configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DocumentsConfig locates the corpus.
type DocumentsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// ChunkerConfig configures the sliding-window chunker.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig configures similarity retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// OllamaEmbedderConfig configures the local Ollama embedder.
type OllamaEmbedderConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// HuggingFaceEmbedderConfig configures the HF Inference API embedder.
type HuggingFaceEmbedderConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// OpenAIEmbedderConfig configures an OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Type        string                     `yaml:"type"` // ollama | huggingface | openai
	Ollama      *OllamaEmbedderConfig      `yaml:"ollama,omitempty"`
	HuggingFace *HuggingFaceEmbedderConfig `yaml:"huggingface,omitempty"`
	OpenAI      *OpenAIEmbedderConfig      `yaml:"openai,omitempty"`
}

// GroqConfig configures the Groq chat completion provider.
type GroqConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// OllamaLLMConfig configures the local Ollama model.
type OllamaLLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Type        string           `yaml:"type"` // groq | ollama
	Temperature float64          `yaml:"temperature"`
	MaxTokens   int              `yaml:"max_tokens"`
	TimeoutSecs int              `yaml:"timeout_secs"`
	Groq        *GroqConfig      `yaml:"groq,omitempty"`
	Ollama      *OllamaLLMConfig `yaml:"ollama,omitempty"`
}

// PromptConfig bounds the assembled prompt.
type PromptConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// IndexConfig configures the optional snapshot store.
type IndexConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
}

// PDFConfig locates the extraction sidecar.
type PDFConfig struct {
	ServiceURL string `yaml:"service_url"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Documents DocumentsConfig `yaml:"documents"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	LLM       LLMConfig       `yaml:"llm"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Index     IndexConfig     `yaml:"index"`
	PDF       PDFConfig       `yaml:"pdf"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from path. A missing file returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// APIKey resolves the key for the named env var; empty name returns "".
func APIKey(envName string) string {
	if envName == "" {
		return ""
	}
	return os.Getenv(envName)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Documents.Dir == "" {
		cfg.Documents.Dir = "documents"
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 909
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 144
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "ollama"
	}
	if cfg.Embedder.Type == "huggingface" {
		if cfg.Embedder.HuggingFace == nil {
			cfg.Embedder.HuggingFace = &HuggingFaceEmbedderConfig{}
		}
		if cfg.Embedder.HuggingFace.Model == "" {
			cfg.Embedder.HuggingFace.Model = "LazarusNLP/all-indo-e5-small-v4"
		}
		if cfg.Embedder.HuggingFace.APIKeyEnv == "" {
			cfg.Embedder.HuggingFace.APIKeyEnv = "HF_API_TOKEN"
		}
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.LLM.Type == "" {
		cfg.LLM.Type = "groq"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.54
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 90
	}
	if cfg.LLM.Type == "groq" {
		if cfg.LLM.Groq == nil {
			cfg.LLM.Groq = &GroqConfig{}
		}
		if cfg.LLM.Groq.Model == "" {
			cfg.LLM.Groq.Model = "llama3-70b-8192"
		}
		if cfg.LLM.Groq.APIKeyEnv == "" {
			cfg.LLM.Groq.APIKeyEnv = "GROQ_API_KEY"
		}
	}
	if cfg.Prompt.MaxChars == 0 {
		cfg.Prompt.MaxChars = 24000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
