// Package config loads server and CLI configuration from the environment,
// optionally seeded from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies the upstream model provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Port string `yaml:"port"`

	// BaseDir is the root under which public/demos, public/markdown and the
	// legacy assistants directory live.
	BaseDir string `yaml:"base_dir"`

	// Upstream model
	Provider        Provider `yaml:"provider"`
	Model           string   `yaml:"model"`
	MaxOutputTokens int64    `yaml:"max_output_tokens"`
	OpenAIAPIKey    string   `yaml:"-"`
	AnthropicAPIKey string   `yaml:"-"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	// Demo config cache
	CacheSize int `yaml:"cache_size"`
}

// Load reads configuration from the environment. When DEMODASH_CONFIG points
// to a YAML file, the file is read first and environment variables override
// its values. API keys are never read from the file.
func Load() (Config, error) {
	cfg := Config{
		Port:            "3000",
		BaseDir:         ".",
		Provider:        ProviderOpenAI,
		Model:           "gpt-4o",
		MaxOutputTokens: 4096,
		LogFile:         "/tmp/demodash.log",
		LogLevel:        slog.LevelInfo,
		CacheSize:       128,
	}

	if path := os.Getenv("DEMODASH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("DEMODASH_PORT", cfg.Port)
	cfg.BaseDir = getEnv("DEMODASH_BASE_DIR", cfg.BaseDir)
	cfg.Provider = Provider(getEnv("DEMODASH_PROVIDER", string(cfg.Provider)))
	cfg.Model = getEnv("DEMODASH_MODEL", cfg.Model)
	cfg.LogFile = getEnv("DEMODASH_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = parseLogLevel(getEnv("DEMODASH_LOG_LEVEL", "INFO"))
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")

	if v := os.Getenv("DEMODASH_MAX_OUTPUT_TOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse DEMODASH_MAX_OUTPUT_TOKENS: %w", err)
		}
		cfg.MaxOutputTokens = n
	}
	if v := os.Getenv("DEMODASH_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse DEMODASH_CACHE_SIZE: %w", err)
		}
		cfg.CacheSize = n
	}

	switch cfg.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return cfg, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
