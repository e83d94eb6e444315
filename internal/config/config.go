package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vendorwatch/internal/model"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AnalysisConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
}

// DefaultsConfig seeds the analysis settings for users who have not
// saved their own yet.
type DefaultsConfig struct {
	Provider       string  `yaml:"provider"`
	OllamaModel    string  `yaml:"ollama_model"`
	OllamaURL      string  `yaml:"ollama_url"`
	PostureWeight  float64 `yaml:"posture_weight"`
	ExposureWeight float64 `yaml:"exposure_weight"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "vendorwatch.db",
		},
		Analysis: AnalysisConfig{
			GeminiModel: "gemini-2.5-pro",
		},
		Defaults: DefaultsConfig{
			Provider:       string(model.ProviderGemini),
			OllamaModel:    "llama3",
			OllamaURL:      "http://localhost:11434",
			PostureWeight:  70,
			ExposureWeight: 30,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Analysis.GeminiAPIKey == "" {
		c.Analysis.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// DefaultSettings converts the configured defaults into per-user settings.
func (c *Config) DefaultSettings() model.Settings {
	return model.Settings{
		Provider:       model.Provider(c.Defaults.Provider),
		OllamaModel:    c.Defaults.OllamaModel,
		OllamaURL:      c.Defaults.OllamaURL,
		PostureWeight:  c.Defaults.PostureWeight,
		ExposureWeight: c.Defaults.ExposureWeight,
	}
}
