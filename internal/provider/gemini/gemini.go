// Package gemini adapts Google Gemini to the provider.Adapter contract.
package gemini

import (
	"context"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
)

const providerName = "gemini"

// Options holds generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Adapter implements provider.Adapter for Google Gemini.
type Adapter struct {
	client Client
	opts   Options
}

// New creates a new Adapter with the specified client and options.
func New(client Client, opts Options) *Adapter {
	if client == nil {
		panic("client is required")
	}
	return &Adapter{client: client, opts: opts}
}

func (a *Adapter) Name() string {
	return providerName
}

// Send converts the conversation to Gemini contents and returns the model reply.
func (a *Adapter) Send(ctx context.Context, conv []provider.Message, specs []tool.Declaration) (*provider.Message, error) {
	system, rest := provider.SplitSystem(conv)
	contents := toGeminiContents(rest)
	config := toGeminiConfig(system, a.opts)
	if len(specs) > 0 {
		config.Tools = toGeminiTools(specs)
	}

	resp, err := a.client.GenerateContent(ctx, a.opts.Model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return fromGeminiResponse(resp)
}
