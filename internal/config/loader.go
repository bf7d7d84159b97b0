package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "vics"
	// ConfigFile is the config file name
	ConfigFile = "config.yaml"
	// HistoryFile is the default history database name
	HistoryFile = "history.db"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// Environment abstracts environment lookups for testability
type Environment interface {
	LookupEnv(key string) (string, bool)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// OSEnvironment implements Environment using the process environment
type OSEnvironment struct{}

func (OSEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs  FileSystem
	env Environment

	// path overrides the dotfile location when set
	path string
}

// NewLoader creates a production Loader using the real filesystem and environment
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}, env: OSEnvironment{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem and environment (for testing)
func NewLoaderWithFS(fs FileSystem, env Environment) *Loader {
	if fs == nil {
		panic("fs is required")
	}
	if env == nil {
		panic("env is required")
	}
	return &Loader{fs: fs, env: env}
}

// WithPath makes the loader read the given file instead of ~/.config/vics/config.yaml.
// An explicit path must exist.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Load reads configuration from ~/.config/vics/config.yaml, merges it over the
// defaults, applies environment overrides and validates the result.
// Returns default config if the dotfile doesn't exist.
//
// NOTE: YAML is unmarshalled directly over the default configuration, so
// explicit zero values in the file override defaults.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath, explicit, err := l.configPath()
	if err == nil {
		data, err := l.fs.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
			}
		case os.IsNotExist(err) && !explicit:
			// Use defaults if file doesn't exist
		default:
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Storage.Path == "" {
		if home, err := l.fs.UserHomeDir(); err == nil {
			cfg.Storage.Path = filepath.Join(home, ".config", ConfigDir, HistoryFile)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) configPath() (path string, explicit bool, err error) {
	if l.path != "" {
		return l.path, true, nil
	}
	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(homeDir, ".config", ConfigDir, ConfigFile), false, nil
}

// applyEnv overlays environment variables onto cfg.
func (l *Loader) applyEnv(cfg *Config) error {
	strVars := map[string]*string{
		"VICS_PROVIDER":     &cfg.Provider.Name,
		"VICS_MODEL":        &cfg.Provider.Model,
		"VICS_WORKSPACE":    &cfg.Sandbox.Workspace,
		"OPENAI_API_KEY":    &cfg.Provider.OpenAIAPIKey,
		"OPENAI_MODEL":      &cfg.Provider.OpenAIModel,
		"OPENAI_BASE_URL":   &cfg.Provider.OpenAIBaseURL,
		"ANTHROPIC_API_KEY": &cfg.Provider.AnthropicAPIKey,
		"ANTHROPIC_MODEL":   &cfg.Provider.AnthropicModel,
		"GEMINI_API_KEY":    &cfg.Provider.GeminiAPIKey,
		"GEMINI_MODEL":      &cfg.Provider.GeminiModel,
		"OLLAMA_HOST":       &cfg.Provider.OllamaHost,
		"OLLAMA_MODEL":      &cfg.Provider.OllamaModel,
	}
	for key, dst := range strVars {
		if v, ok := l.env.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := l.env.LookupEnv("VICS_MAX_ITERATIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VICS_MAX_ITERATIONS must be an integer: %w", err)
		}
		cfg.Agent.MaxIterations = n
	}
	return nil
}

// Load is a convenience function using the default loader
func Load() (*Config, error) {
	return NewLoader().Load()
}
