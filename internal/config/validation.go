package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	switch c.Provider.Name {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama:
	default:
		errs = append(errs, fmt.Sprintf("provider.name must be one of openai, anthropic, gemini, ollama (got %q)", c.Provider.Name))
	}
	if c.Provider.ActiveModel() == "" {
		errs = append(errs, "provider model must not be empty")
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		errs = append(errs, "provider.temperature must be between 0 and 2")
	}
	if c.Provider.MaxTokens < 1 {
		errs = append(errs, "provider.max_tokens must be >= 1")
	}
	if c.Provider.RequestTimeoutSeconds < 1 {
		errs = append(errs, "provider.request_timeout_seconds must be >= 1")
	}
	if c.Provider.MaxAttempts < 1 {
		errs = append(errs, "provider.max_attempts must be >= 1")
	}
	if c.Provider.RetryBaseDelayMs < 0 {
		errs = append(errs, "provider.retry_base_delay_ms must be >= 0")
	}
	if c.Provider.RetryMaxDelayMs < c.Provider.RetryBaseDelayMs {
		errs = append(errs, "provider.retry_max_delay_ms must be >= provider.retry_base_delay_ms")
	}

	if c.Agent.MaxIterations < 1 {
		errs = append(errs, "agent.max_iterations must be >= 1")
	}

	if c.Sandbox.Workspace == "" {
		errs = append(errs, "sandbox.workspace must not be empty")
	}
	if c.Sandbox.CommandTimeoutSeconds < 1 {
		errs = append(errs, "sandbox.command_timeout_seconds must be >= 1")
	}
	if c.Sandbox.MaxCommandTimeoutSeconds < c.Sandbox.CommandTimeoutSeconds {
		errs = append(errs, "sandbox.max_command_timeout_seconds must be >= sandbox.command_timeout_seconds")
	}
	if c.Sandbox.GracePeriodMs < 0 {
		errs = append(errs, "sandbox.grace_period_ms must be >= 0")
	}
	if c.Sandbox.MaxOutputBytes < 1 {
		errs = append(errs, "sandbox.max_output_bytes must be >= 1")
	}

	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.MaxSearchResults < 1 {
		errs = append(errs, "tools.max_search_results must be >= 1")
	}
	if c.Tools.MaxLineLength < 1 {
		errs = append(errs, "tools.max_line_length must be >= 1")
	}
	if c.Tools.MaxListEntries < 1 {
		errs = append(errs, "tools.max_list_entries must be >= 1")
	}
	if c.Tools.MaxToolOutputChars < 1 {
		errs = append(errs, "tools.max_tool_output_chars must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// APIKey returns the credential for the selected provider.
func (p ProviderConfig) APIKey() string {
	switch p.Name {
	case ProviderAnthropic:
		return p.AnthropicAPIKey
	case ProviderGemini:
		return p.GeminiAPIKey
	case ProviderOpenAI:
		return p.OpenAIAPIKey
	}
	return ""
}

// RequireCredentials fails when the selected provider needs an API key that is not set.
func (p ProviderConfig) RequireCredentials() error {
	if p.Name == ProviderOllama || p.APIKey() != "" {
		return nil
	}
	envVar := map[string]string{
		ProviderOpenAI:    "OPENAI_API_KEY",
		ProviderAnthropic: "ANTHROPIC_API_KEY",
		ProviderGemini:    "GEMINI_API_KEY",
	}[p.Name]
	return fmt.Errorf("no API key for provider %q: set %s", p.Name, envVar)
}
