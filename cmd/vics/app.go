package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Cyclone1070/vics/internal/config"
	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/provider/anthropic"
	"github.com/Cyclone1070/vics/internal/provider/gemini"
	"github.com/Cyclone1070/vics/internal/provider/ollama"
	"github.com/Cyclone1070/vics/internal/provider/openai"
	"github.com/Cyclone1070/vics/internal/sandbox"
	"github.com/Cyclone1070/vics/internal/storage"
	"github.com/Cyclone1070/vics/internal/tool/toolset"
	"github.com/Cyclone1070/vics/internal/ui"
	"github.com/Cyclone1070/vics/internal/workflow/loop"
	"github.com/Cyclone1070/vics/internal/workflow/toolmanager"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// AdapterFactory builds the model adapter for the configured provider.
type AdapterFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.Adapter, error)

// App holds the process-level dependencies shared by all commands.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive selects the spinner display and markdown rendering.
	Interactive bool
	// Width is the terminal width used for word wrapping; zero means 80.
	Width int

	NewAdapter AdapterFactory
	// LoadConfig reads the configuration file; path is empty unless --config was given.
	LoadConfig func(path string) (*config.Config, error)
}

// NewApp returns an App bound to the process's standard streams.
func NewApp() *App {
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	width := 0
	if interactive {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}
	return &App{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: interactive,
		Width:       width,
		NewAdapter:  buildAdapter,
		LoadConfig: func(path string) (*config.Config, error) {
			return config.NewLoader().WithPath(path).Load()
		},
	}
}

// Runtime is everything one command needs to run tasks.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Adapter  provider.Adapter
	Registry *toolmanager.ToolManager
	Guard    *sandbox.Guard
	History  *storage.HistoryStore

	Display  ui.Display
	Renderer ui.MarkdownRenderer
}

// Close releases the history database.
func (r *Runtime) Close() {
	if r.History != nil {
		if err := r.History.Close(); err != nil {
			r.Logger.Warn("failed to close history", "error", err)
		}
	}
}

// NewSession starts a fresh conversation using the runtime's adapter and tools.
func (r *Runtime) NewSession() *loop.Session {
	return loop.NewSession(r.Adapter, r.Registry, loop.Options{
		SystemPrompt:  r.Config.Agent.SystemPrompt,
		MaxIterations: r.Config.Agent.MaxIterations,
		Logger:        r.Logger,
	})
}

func newLogger(w io.Writer, verbose, color bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	}))
}

// loadConfig loads the configuration and applies command-line overrides.
func (a *App) loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := a.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, cmd)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, cmd *cli.Command) {
	if v := cmd.String("workspace"); v != "" {
		cfg.Sandbox.Workspace = v
	}
	if v := cmd.String("provider"); v != "" {
		cfg.Provider.Name = v
	}
	if v := cmd.String("model"); v != "" {
		cfg.Provider.Model = v
	}
	if cmd.IsSet("max-iterations") {
		cfg.Agent.MaxIterations = cmd.Int("max-iterations")
	}
	if cmd.Bool("no-history") {
		cfg.Storage.Enabled = false
	}
}

// newPolicy creates the workspace if needed and builds the sandbox policy for it.
func newPolicy(cfg *config.Config) (*sandbox.Policy, error) {
	if err := os.MkdirAll(cfg.Sandbox.Workspace, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", cfg.Sandbox.Workspace, err)
	}
	return sandbox.NewPolicy(sandbox.PolicyConfig{
		Root:           cfg.Sandbox.Workspace,
		DenyPatterns:   cfg.Sandbox.DenyPatterns,
		DefaultTimeout: cfg.Sandbox.CommandTimeout(),
		MaxTimeout:     cfg.Sandbox.MaxCommandTimeout(),
		GracePeriod:    cfg.Sandbox.GracePeriod(),
		MaxOutputBytes: cfg.Sandbox.MaxOutputBytes,
	})
}

func retryPolicy(cfg config.ProviderConfig) provider.RetryPolicy {
	policy := provider.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.MaxAttempts
	if cfg.RetryBaseDelayMs > 0 {
		policy.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
	}
	if cfg.RetryMaxDelayMs > 0 {
		policy.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
	}
	return policy
}

// buildAdapter creates the SDK client for the configured provider and wraps
// it with timeouts and retries.
func buildAdapter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.Adapter, error) {
	p := cfg.Provider
	if err := p.RequireCredentials(); err != nil {
		return nil, err
	}

	var base provider.Adapter
	switch p.Name {
	case config.ProviderOpenAI:
		base = openai.New(openai.NewSDKClient(p.APIKey(), p.OpenAIBaseURL), openai.Options{
			Model: p.ActiveModel(), Temperature: p.Temperature, MaxTokens: p.MaxTokens,
		})
	case config.ProviderAnthropic:
		base = anthropic.New(anthropic.NewSDKClient(p.APIKey(), p.AnthropicBaseURL), anthropic.Options{
			Model: p.ActiveModel(), Temperature: p.Temperature, MaxTokens: p.MaxTokens,
		})
	case config.ProviderGemini:
		client, err := gemini.NewSDKClient(ctx, p.APIKey())
		if err != nil {
			return nil, err
		}
		base = gemini.New(client, gemini.Options{
			Model: p.ActiveModel(), Temperature: p.Temperature, MaxTokens: p.MaxTokens,
		})
	case config.ProviderOllama:
		client, err := ollama.NewSDKClient(p.OllamaHost)
		if err != nil {
			return nil, err
		}
		base = ollama.New(client, ollama.Options{
			Model: p.ActiveModel(), Temperature: p.Temperature, MaxTokens: p.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", p.Name)
	}

	return provider.WithRetry(base, retryPolicy(p), p.RequestTimeout(), logger), nil
}

// newRuntime wires configuration, sandbox, tools, model adapter and history
// for one command invocation.
func (a *App) newRuntime(ctx context.Context, cmd *cli.Command) (*Runtime, error) {
	verbose := cmd.Bool("verbose")
	logger := newLogger(a.Stderr, verbose, a.Interactive)
	slog.SetDefault(logger)

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	policy, err := newPolicy(cfg)
	if err != nil {
		return nil, err
	}
	guard := sandbox.NewGuard(policy)

	registry := toolmanager.NewToolManager(cfg.Tools.MaxToolOutputChars, logger)
	if err := toolset.Register(registry, guard, cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	adapter, err := a.NewAdapter(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.Provider.Name, err)
	}

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Adapter:  adapter,
		Registry: registry,
		Guard:    guard,
	}

	if cfg.Storage.Enabled && cfg.Storage.Path != "" {
		store, err := storage.OpenHistory(cfg.Storage.Path)
		if err != nil {
			logger.Warn("history disabled", "path", cfg.Storage.Path, "error", err)
		} else {
			rt.History = store
		}
	}

	a.attachDisplay(rt, verbose)
	logger.Debug("runtime ready",
		"provider", adapter.Name(),
		"model", cfg.Provider.ActiveModel(),
		"workspace", policy.Root(),
		"tools", len(registry.Declarations()))
	return rt, nil
}

func (a *App) attachDisplay(rt *Runtime, verbose bool) {
	if !a.Interactive {
		rt.Display = ui.NewPlainDisplay(a.Stdout, verbose)
		rt.Renderer = ui.PlainRenderer{}
		return
	}
	rt.Display = ui.NewTerminalDisplay(a.Stdout, ui.DefaultSpinner)
	width := a.Width
	if width <= 0 {
		width = 80
	}
	renderer, err := ui.NewGlamourRenderer(width)
	if err != nil {
		rt.Logger.Warn("markdown rendering disabled", "error", err)
		rt.Renderer = ui.PlainRenderer{}
		return
	}
	rt.Renderer = renderer
}
