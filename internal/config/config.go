package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
	LLM      struct {
		Provider    string  `json:"provider"`
		BaseURL     string  `json:"base_url"`
		APIKey      string  `json:"api_key"`
		Model       string  `json:"model"`
		EmbedModel  string  `json:"embed_model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		UseSeed     bool    `json:"use_seed"`
		Seed        int     `json:"seed"`
	} `json:"llm"`
	Supabase struct {
		URL        string `json:"url"`
		ServiceKey string `json:"service_key"`
	} `json:"supabase"`
	Cohere struct {
		APIKey string `json:"api_key"`
		Model  string `json:"model"`
	} `json:"cohere"`
	Retrieval struct {
		FetchCount       int  `json:"fetch_count"`
		KeepCount        int  `json:"keep_count"`
		Rerank           bool `json:"rerank"`
		MaxContextTokens int  `json:"max_context_tokens"`
	} `json:"retrieval"`
	Router struct {
		CreateOverwrites bool `json:"create_overwrites"`
		MaxConcurrent    int  `json:"max_concurrent"`
	} `json:"router"`
	HTTP struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
	} `json:"http"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
}

func Load(path string) (*Config, error) {
	// .env in the working directory, if present
	godotenv.Load()

	cfg := &Config{
		DataDir: filepath.Join(os.Getenv("HOME"), ".leasecraft"),
	}
	cfg.LogLevel = "info"
	cfg.LLM.Provider = "openai"
	cfg.LLM.BaseURL = "https://api.openai.com/v1"
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.LLM.EmbedModel = "text-embedding-3-small"
	cfg.LLM.MaxTokens = 4000
	cfg.LLM.Temperature = 0.1
	cfg.LLM.UseSeed = true
	cfg.LLM.Seed = 42
	cfg.Cohere.Model = "rerank-multilingual-v3.0"
	cfg.Retrieval.FetchCount = 30
	cfg.Retrieval.KeepCount = 8
	cfg.Retrieval.Rerank = true
	cfg.Retrieval.MaxContextTokens = 3000
	cfg.Router.CreateOverwrites = true
	cfg.Router.MaxConcurrent = 4
	cfg.HTTP.Enabled = true
	cfg.HTTP.Listen = ":8080"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if url := os.Getenv("SUPABASE_URL"); url != "" {
		cfg.Supabase.URL = url
	}
	if key := os.Getenv("SUPABASE_SERVICE_KEY"); key != "" {
		cfg.Supabase.ServiceKey = key
	}
	if key := os.Getenv("COHERE_API_KEY"); key != "" {
		cfg.Cohere.APIKey = key
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

// Save writes the config atomically, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ToMap round-trips the config through JSON into a generic nested map.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListValues flattens the config into dot-separated keys, masking secrets
// when mask is true.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue reads one dot-separated key from the config file at path.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return nil, err
	}
	v, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue writes one dot-separated key into the config file at path. The
// value is JSON-decoded when possible, so numbers and booleans keep their
// types; anything else is stored as a string.
func SetValue(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		parsed = value
	}

	flat := Flatten(m)
	flat[key] = parsed
	nested := Unflatten(flat)

	out, err := json.MarshalIndent(nested, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	out = append(out, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, out, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
