package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	APIKey      string `json:"api_key" env:"OPENAI_API_KEY"`
	BaseURL     string `json:"base_url" env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model       string `json:"model" env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	Addr        string `json:"addr" env:"LIFEPROMPT_ADDR" envDefault:":8000"`
	ServerURL   string `json:"server_url" env:"LIFEPROMPT_SERVER_URL" envDefault:"http://localhost:8000"`
	LogLevel    string `json:"log_level" env:"LIFEPROMPT_LOG_LEVEL" envDefault:"info"`
	Generations int    `json:"generations" env:"LIFEPROMPT_GENERATIONS" envDefault:"1000"`
	// Responder is one of "tools", "extract" or "local".
	Responder string `json:"responder" env:"LIFEPROMPT_RESPONDER" envDefault:"tools"`
	// LocalFallback answers with the local responder when the chat model fails.
	LocalFallback bool `json:"local_fallback" env:"LIFEPROMPT_LOCAL_FALLBACK"`
}

// Load reads the environment and then overlays the JSON file at path, if any.
// Keys missing from the file keep their environment value.
func Load(path string) (*Config, error) {
	var conf Config
	if err := env.Parse(&conf); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if path == "" {
		return &conf, nil
	}
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := sonic.Unmarshal(file, &conf); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	return &conf, nil
}

// HasModel reports whether an OpenAI compatible chat model is configured.
func (c *Config) HasModel() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{BaseURL:%q, Model:%q, Addr:%q, ServerURL:%q}", c.BaseURL, c.Model, c.Addr, c.ServerURL)
}
