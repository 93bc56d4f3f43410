package common

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment" validate:"omitempty,oneof=development production"`
	Server       ServerConfig       `toml:"server"`
	Storage      StorageConfig      `toml:"storage"`
	Logging      LoggingConfig      `toml:"logging"`
	Fetch        FetchConfig        `toml:"fetch"`
	Sandbox      SandboxConfig      `toml:"sandbox"`
	Gemini       GeminiConfig       `toml:"gemini"`
	Claude       ClaudeConfig       `toml:"claude"`
	LLM          LLMConfig          `toml:"llm"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Revalidation RevalidationConfig `toml:"revalidation"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// StorageConfig selects the blob storage backend for the scraper repository.
// Both backends present identical read/write-bytes-by-key semantics.
type StorageConfig struct {
	Backend string            `toml:"backend" validate:"oneof=local badger"`
	Local   LocalStoreConfig  `toml:"local"`
	Badger  BadgerStoreConfig `toml:"badger"`
}

type LocalStoreConfig struct {
	Path string `toml:"path"` // Root directory for scraper/metadata files
}

type BadgerStoreConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// FetchConfig controls page fetching behavior for the analyst and validator tools
type FetchConfig struct {
	UserAgent          string        `toml:"user_agent"`
	RequestTimeout     time.Duration `toml:"request_timeout"`      // Per-fetch timeout
	EnableJavaScript   bool          `toml:"enable_javascript"`    // Render with headless Chrome when static fetch is insufficient
	JavaScriptWaitTime time.Duration `toml:"javascript_wait_time"` // Time to wait for JavaScript to render
	MinHTMLSize        int           `toml:"min_html_size"`        // Static responses below this size fall through to browser rendering
	RequestsPerSecond  float64       `toml:"requests_per_second"`  // Per-domain rate limit
	Burst              int           `toml:"burst"`                // Rate limiter burst size
}

// SandboxConfig controls generated-artifact execution
type SandboxConfig struct {
	ExecutionTimeout time.Duration `toml:"execution_timeout"` // Wall-clock bound per artifact run
	Headless         bool          `toml:"headless"`
	NoSandbox        bool          `toml:"no_sandbox"`
	DisableGPU       bool          `toml:"disable_gpu"`
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// LLMConfig selects models per specialist role
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider" validate:"omitempty,oneof=gemini claude"`
	AnalystModel    string `toml:"analyst_model"` // e.g. "gemini-2.5-flash" or "claude-sonnet-4-20250514"
	CoderModel      string `toml:"coder_model"`
}

// OrchestratorConfig bounds the refinement loop
type OrchestratorConfig struct {
	MaxIterations     int           `toml:"max_iterations" validate:"min=1"` // Retry budget per build session
	SpecialistTimeout time.Duration `toml:"specialist_timeout"`              // Wall-clock bound per specialist invocation
}

// RevalidationConfig controls scheduled re-testing of stored scrapers
type RevalidationConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
	Limit    int    `toml:"limit"`    // Max scrapers to revalidate per run
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Backend: "local",
			Local:   LocalStoreConfig{Path: "./data/repository"},
			Badger:  BadgerStoreConfig{Path: "./data/autoscraper.db"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Fetch: FetchConfig{
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout:     30 * time.Second,
			EnableJavaScript:   true,
			JavaScriptWaitTime: 3 * time.Second,
			MinHTMLSize:        500,
			RequestsPerSecond:  1,
			Burst:              2,
		},
		Sandbox: SandboxConfig{
			ExecutionTimeout: 30 * time.Second,
			Headless:         true,
			NoSandbox:        true,
			DisableGPU:       true,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.2,
			MaxTokens:   8192,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			Temperature: 0.2,
			MaxTokens:   8192,
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
		},
		Orchestrator: OrchestratorConfig{
			MaxIterations:     5,
			SpecialistTimeout: 2 * time.Minute,
		},
		Revalidation: RevalidationConfig{
			Enabled:  false,
			Schedule: "0 3 * * *",
			Limit:    20,
		},
	}
}

// LoadConfig loads configuration: defaults -> file -> environment overrides.
// A missing path is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides (highest priority
// below CLI flags). API keys are the common case for env-only configuration.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("AUTOSCRAPER_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("AUTOSCRAPER_ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("AUTOSCRAPER_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("AUTOSCRAPER_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
}
