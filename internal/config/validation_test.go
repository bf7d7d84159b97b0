package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_AllDefaults_Pass(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidate_InvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"unknown provider", func(c *Config) { c.Provider.Name = "bard" }, "provider.name"},
		{"temperature too high", func(c *Config) { c.Provider.Temperature = 3 }, "provider.temperature"},
		{"zero attempts", func(c *Config) { c.Provider.MaxAttempts = 0 }, "provider.max_attempts"},
		{"max delay below base", func(c *Config) { c.Provider.RetryMaxDelayMs = 1 }, "provider.retry_max_delay_ms"},
		{"zero iterations", func(c *Config) { c.Agent.MaxIterations = 0 }, "agent.max_iterations"},
		{"empty workspace", func(c *Config) { c.Sandbox.Workspace = "" }, "sandbox.workspace"},
		{"max timeout below default", func(c *Config) { c.Sandbox.MaxCommandTimeoutSeconds = 1 }, "sandbox.max_command_timeout_seconds"},
		{"zero output", func(c *Config) { c.Sandbox.MaxOutputBytes = 0 }, "sandbox.max_output_bytes"},
		{"zero search results", func(c *Config) { c.Tools.MaxSearchResults = 0 }, "tools.max_search_results"},
		{"zero tool output", func(c *Config) { c.Tools.MaxToolOutputChars = 0 }, "tools.max_tool_output_chars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorContains(t, err, tt.field)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.MaxIterations = 0
	cfg.Tools.MaxFileSize = 0

	err := cfg.Validate()

	assert.ErrorContains(t, err, "agent.max_iterations")
	assert.ErrorContains(t, err, "tools.max_file_size")
}

func TestRequireCredentials(t *testing.T) {
	p := DefaultConfig().Provider
	assert.ErrorContains(t, p.RequireCredentials(), "OPENAI_API_KEY")

	p.OpenAIAPIKey = "sk-test"
	assert.NoError(t, p.RequireCredentials())

	p.Name = ProviderOllama
	p.OpenAIAPIKey = ""
	assert.NoError(t, p.RequireCredentials())
}
