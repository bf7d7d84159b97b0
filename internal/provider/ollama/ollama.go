// Package ollama adapts a local Ollama server to provider.Adapter.
package ollama

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/ollama/ollama/api"
)

const providerName = "ollama"

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Options holds generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Adapter implements provider.Adapter for Ollama.
type Adapter struct {
	client Client
	opts   Options
}

// New creates a new Adapter.
func New(client Client, opts Options) *Adapter {
	if client == nil {
		panic("client is required")
	}
	return &Adapter{client: client, opts: opts}
}

func (a *Adapter) Name() string {
	return providerName
}

// Send issues a non-streaming chat request.
func (a *Adapter) Send(ctx context.Context, conv []provider.Message, specs []tool.Declaration) (*provider.Message, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    a.opts.Model,
		Messages: toOllamaMessages(conv),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": a.opts.Temperature,
		},
	}
	if a.opts.MaxTokens > 0 {
		req.Options["num_predict"] = a.opts.MaxTokens
	}
	if len(specs) > 0 {
		req.Tools = toOllamaTools(specs)
	}

	var (
		content strings.Builder
		calls   []api.ToolCall
		done    bool
	)
	err := a.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if len(resp.Message.ToolCalls) > 0 {
			calls = append(calls, resp.Message.ToolCalls...)
		}
		done = done || resp.Done
		return nil
	})
	if err != nil {
		return nil, mapOllamaError(err)
	}
	if !done && content.Len() == 0 && len(calls) == 0 {
		return nil, provider.NewError(providerName, provider.KindMalformedResponse, "empty chat response", nil)
	}

	toolCalls := make([]provider.ToolCall, 0, len(calls))
	for _, tc := range calls {
		toolCalls = append(toolCalls, provider.ToolCall{
			Name:      tc.Function.Name,
			Arguments: map[string]any(tc.Function.Arguments),
		})
	}
	provider.EnsureCallIDs(toolCalls)

	text := strings.TrimSpace(thinkBlock.ReplaceAllString(content.String(), ""))
	msg := provider.AssistantMessage(text, toolCalls...)
	return &msg, nil
}

func toOllamaMessages(conv []provider.Message) []api.Message {
	out := make([]api.Message, 0, len(conv))
	for _, msg := range conv {
		m := api.Message{Role: string(msg.Role), Content: msg.Content}
		for _, call := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		out = append(out, m)
	}
	return out
}

func toOllamaTools(specs []tool.Declaration) []api.Tool {
	out := make([]api.Tool, 0, len(specs))
	for _, spec := range specs {
		params := api.ToolFunctionParameters{
			Type:       "object",
			Properties: make(map[string]api.ToolProperty),
		}
		if p := spec.Parameters; p != nil {
			params.Required = p.Required
			for name, prop := range p.Properties {
				params.Properties[name] = toOllamaProperty(prop)
			}
		}
		out = append(out, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

func toOllamaProperty(s *tool.Schema) api.ToolProperty {
	prop := api.ToolProperty{
		Type:        api.PropertyType{string(s.Type)},
		Description: s.Description,
	}
	for _, e := range s.Enum {
		prop.Enum = append(prop.Enum, e)
	}
	if s.Items != nil {
		prop.Items = s.Items
	}
	return prop
}

func mapOllamaError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return provider.FromStatus(providerName, statusErr.StatusCode, statusErr.ErrorMessage, nil, err)
	}
	var statusPtr *api.StatusError
	if errors.As(err, &statusPtr) {
		return provider.FromStatus(providerName, statusPtr.StatusCode, statusPtr.ErrorMessage, nil, err)
	}
	return provider.FromTransport(providerName, err)
}
