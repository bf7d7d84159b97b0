// Package anthropic adapts the Anthropic Messages API to provider.Adapter.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/anthropics/anthropic-sdk-go"
)

const (
	providerName     = "anthropic"
	defaultMaxTokens = 4096
)

// Options holds generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Adapter implements provider.Adapter for Anthropic models.
type Adapter struct {
	client Client
	opts   Options
}

// New creates a new Adapter.
func New(client Client, opts Options) *Adapter {
	if client == nil {
		panic("client is required")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return &Adapter{client: client, opts: opts}
}

func (a *Adapter) Name() string {
	return providerName
}

// Send sends the conversation with the system prompt carried separately.
func (a *Adapter) Send(ctx context.Context, conv []provider.Message, specs []tool.Declaration) (*provider.Message, error) {
	system, rest := provider.SplitSystem(conv)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.opts.Model),
		MaxTokens:   int64(a.opts.MaxTokens),
		Temperature: anthropic.Float(a.opts.Temperature),
		Messages:    toAnthropicMessages(rest),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(specs) > 0 {
		params.Tools = toAnthropicTools(specs)
	}

	resp, err := a.client.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(err)
	}
	return fromAnthropicResponse(resp)
}

// toAnthropicMessages converts the conversation. Adjacent messages with the
// same wire role are merged, so consecutive tool results become one user
// message of tool_result blocks.
func toAnthropicMessages(conv []provider.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam

	appendBlocks := func(role anthropic.MessageParamRole, blocks ...anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, msg := range conv {
		switch msg.Role {
		case provider.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				input := call.Arguments
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Name))
			}
			appendBlocks(anthropic.MessageParamRoleAssistant, blocks...)

		case provider.RoleTool:
			callID, isError := "", false
			if r := msg.ToolResult; r != nil {
				callID, isError = r.CallID, r.IsError()
			}
			appendBlocks(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(callID, msg.Content, isError))

		default:
			if msg.Content != "" {
				appendBlocks(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(msg.Content))
			}
		}
	}
	return out
}

func toAnthropicTools(specs []tool.Declaration) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		props := map[string]any{}
		var required []string
		if p := spec.Parameters; p != nil {
			for name, prop := range p.Properties {
				props[name] = prop
			}
			required = p.Required
		}
		schema := anthropic.ToolInputSchemaParam{Properties: props, Required: required}
		u := anthropic.ToolUnionParamOfTool(schema, spec.Name)
		if spec.Description != "" {
			u.OfTool.Description = anthropic.String(spec.Description)
		}
		out = append(out, u)
	}
	return out
}

func fromAnthropicResponse(resp *anthropic.Message) (*provider.Message, error) {
	if resp == nil {
		return nil, provider.NewError(providerName, provider.KindMalformedResponse, "empty response", nil)
	}
	if resp.StopReason == "refusal" {
		return nil, provider.NewError(providerName, provider.KindContentBlocked, "model refused the request", nil)
	}

	var text strings.Builder
	var calls []provider.ToolCall
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return nil, provider.NewError(providerName, provider.KindMalformedResponse,
						fmt.Sprintf("tool_use %s has invalid input", block.Name), err)
				}
			}
			calls = append(calls, provider.ToolCall{ID: block.ID, Name: block.Name, Arguments: args})
		}
	}
	provider.EnsureCallIDs(calls)

	if text.Len() == 0 && len(calls) == 0 {
		if resp.StopReason == "max_tokens" {
			return nil, provider.NewError(providerName, provider.KindContextLength, "response truncated at max tokens", nil)
		}
		return nil, provider.NewError(providerName, provider.KindMalformedResponse, "response has no text or tool use", nil)
	}

	msg := provider.AssistantMessage(text.String(), calls...)
	return &msg, nil
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		message := http.StatusText(apiErr.StatusCode)
		var header http.Header
		if apiErr.Response != nil {
			header = apiErr.Response.Header
			if apiErr.Request != nil {
				message = apiErr.Error()
			}
		}
		return provider.FromStatus(providerName, apiErr.StatusCode, message, header, err)
	}
	return provider.FromTransport(providerName, err)
}
