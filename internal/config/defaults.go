package config

import "time"

// Provider names accepted in provider.name.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile,
// environment variables and finally CLI flags.
// NOTE: Values in the config file override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Agent    AgentConfig    `yaml:"agent"`
	Sandbox  SandboxConfig  `yaml:"sandbox"`
	Tools    ToolsConfig    `yaml:"tools"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ProviderConfig struct {
	Name string `yaml:"name"` // Default: openai

	// Model overrides the per-provider model below when set.
	Model          string `yaml:"model"`
	OpenAIModel    string `yaml:"openai_model"`    // Default: gpt-4o
	AnthropicModel string `yaml:"anthropic_model"` // Default: claude-sonnet-4-20250514
	GeminiModel    string `yaml:"gemini_model"`    // Default: gemini-2.5-flash
	OllamaModel    string `yaml:"ollama_model"`    // Default: llama3.1

	OpenAIBaseURL    string `yaml:"openai_base_url"`
	AnthropicBaseURL string `yaml:"anthropic_base_url"`
	OllamaHost       string `yaml:"ollama_host"` // Default: http://localhost:11434

	// API keys are only read from the environment.
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`

	Temperature float64 `yaml:"temperature"` // Default: 0.1
	MaxTokens   int     `yaml:"max_tokens"`  // Default: 4096

	// Retry and timeouts
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"` // Default: 120
	MaxAttempts           int `yaml:"max_attempts"`            // Default: 4
	RetryBaseDelayMs      int `yaml:"retry_base_delay_ms"`     // Default: 1000
	RetryMaxDelayMs       int `yaml:"retry_max_delay_ms"`      // Default: 30000
}

type AgentConfig struct {
	MaxIterations int `yaml:"max_iterations"` // Default: 25

	// SystemPrompt replaces the built-in system prompt when non-empty.
	SystemPrompt string `yaml:"system_prompt"`
}

type SandboxConfig struct {
	Workspace                string `yaml:"workspace"`                   // Default: ./workspace
	CommandTimeoutSeconds    int    `yaml:"command_timeout_seconds"`     // Default: 60
	MaxCommandTimeoutSeconds int    `yaml:"max_command_timeout_seconds"` // Default: 600
	GracePeriodMs            int    `yaml:"grace_period_ms"`             // Default: 2000
	MaxOutputBytes           int    `yaml:"max_output_bytes"`            // Default: 64 KiB per stream

	// DenyPatterns replaces the built-in deny-list when set.
	DenyPatterns []string `yaml:"deny_patterns"`
}

type ToolsConfig struct {
	MaxFileSize        int64 `yaml:"max_file_size"`         // Default: 20 MiB
	MaxSearchResults   int   `yaml:"max_search_results"`    // Default: 50
	MaxLineLength      int   `yaml:"max_line_length"`       // Default: 500
	MaxListEntries     int   `yaml:"max_list_entries"`      // Default: 1000
	MaxToolOutputChars int   `yaml:"max_tool_output_chars"` // Default: 32000
}

type StorageConfig struct {
	Enabled bool `yaml:"enabled"` // Default: true

	// Path of the SQLite history database; empty means ~/.config/vics/history.db.
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:                  ProviderOpenAI,
			OpenAIModel:           "gpt-4o",
			AnthropicModel:        "claude-sonnet-4-20250514",
			GeminiModel:           "gemini-2.5-flash",
			OllamaModel:           "llama3.1",
			OllamaHost:            "http://localhost:11434",
			Temperature:           0.1,
			MaxTokens:             4096,
			RequestTimeoutSeconds: 120,
			MaxAttempts:           4,
			RetryBaseDelayMs:      1000,
			RetryMaxDelayMs:       30000,
		},
		Agent: AgentConfig{
			MaxIterations: 25,
		},
		Sandbox: SandboxConfig{
			Workspace:                "./workspace",
			CommandTimeoutSeconds:    60,
			MaxCommandTimeoutSeconds: 600,
			GracePeriodMs:            2000,
			MaxOutputBytes:           64 * 1024,
		},
		Tools: ToolsConfig{
			MaxFileSize:        20 * 1024 * 1024,
			MaxSearchResults:   50,
			MaxLineLength:      500,
			MaxListEntries:     1000,
			MaxToolOutputChars: 32000,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
	}
}

// ActiveModel returns the model for the selected provider.
func (p ProviderConfig) ActiveModel() string {
	if p.Model != "" {
		return p.Model
	}
	switch p.Name {
	case ProviderAnthropic:
		return p.AnthropicModel
	case ProviderGemini:
		return p.GeminiModel
	case ProviderOllama:
		return p.OllamaModel
	default:
		return p.OpenAIModel
	}
}

// RequestTimeout returns the per-request provider timeout.
func (p ProviderConfig) RequestTimeout() time.Duration {
	return time.Duration(p.RequestTimeoutSeconds) * time.Second
}

// CommandTimeout returns the default shell command timeout.
func (s SandboxConfig) CommandTimeout() time.Duration {
	return time.Duration(s.CommandTimeoutSeconds) * time.Second
}

// MaxCommandTimeout returns the upper bound for a requested command timeout.
func (s SandboxConfig) MaxCommandTimeout() time.Duration {
	return time.Duration(s.MaxCommandTimeoutSeconds) * time.Second
}

// GracePeriod returns the delay between interrupt and kill on timeout.
func (s SandboxConfig) GracePeriod() time.Duration {
	return time.Duration(s.GracePeriodMs) * time.Millisecond
}
