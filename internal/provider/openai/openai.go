// Package openai adapts the OpenAI chat completions API to provider.Adapter.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/openai/openai-go/v3"
)

const providerName = "openai"

// Options holds generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Adapter implements provider.Adapter for OpenAI-compatible endpoints.
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

func (a *Adapter) Send(ctx context.Context, conv []provider.Message, specs []tool.Declaration) (*provider.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(a.opts.Model),
		Messages:    toOpenAIMessages(conv),
		Temperature: openai.Float(a.opts.Temperature),
	}
	if a.opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(a.opts.MaxTokens))
	}
	if len(specs) > 0 {
		params.Tools = toOpenAITools(specs)
	}

	resp, err := a.client.New(ctx, params)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	return fromOpenAIResponse(resp)
}

func toOpenAIMessages(conv []provider.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv))
	for _, msg := range conv {
		switch msg.Role {
		case provider.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case provider.RoleAssistant:
			out = append(out, assistantParam(msg))
		case provider.RoleTool:
			callID := ""
			if msg.ToolResult != nil {
				callID = msg.ToolResult.CallID
			}
			out = append(out, openai.ToolMessage(msg.Content, callID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func assistantParam(msg provider.Message) openai.ChatCompletionMessageParamUnion {
	param := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		param.Content.OfString = openai.String(msg.Content)
	}
	for _, call := range msg.ToolCalls {
		args, err := json.Marshal(call.Arguments)
		if err != nil || call.Arguments == nil {
			args = []byte("{}")
		}
		param.ToolCalls = append(param.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      call.Name,
					Arguments: string(args),
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &param}
}

func toOpenAITools(specs []tool.Declaration) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		def := openai.FunctionDefinitionParam{
			Name:        spec.Name,
			Description: openai.String(spec.Description),
		}
		if spec.Parameters != nil {
			def.Parameters = schemaToMap(spec.Parameters)
		}
		out = append(out, openai.ChatCompletionFunctionTool(def))
	}
	return out
}

// schemaToMap renders a tool schema as a JSON Schema object.
func schemaToMap(s *tool.Schema) map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	if m["type"] == "object" {
		if _, ok := m["properties"]; !ok {
			m["properties"] = map[string]any{}
		}
	}
	return m
}

func fromOpenAIResponse(resp *openai.ChatCompletion) (*provider.Message, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, provider.NewError(providerName, provider.KindMalformedResponse, "no choices in response", nil)
	}
	choice := resp.Choices[0]

	if choice.FinishReason == "content_filter" {
		return nil, provider.NewError(providerName, provider.KindContentBlocked, "response blocked by content filter", nil)
	}
	if choice.Message.Refusal != "" && len(choice.Message.ToolCalls) == 0 {
		return nil, provider.NewError(providerName, provider.KindContentBlocked, choice.Message.Refusal, nil)
	}

	var calls []provider.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, provider.NewError(providerName, provider.KindMalformedResponse,
					fmt.Sprintf("tool call %s has invalid JSON arguments", tc.Function.Name), err)
			}
		}
		calls = append(calls, provider.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	provider.EnsureCallIDs(calls)

	if choice.Message.Content == "" && len(calls) == 0 && choice.FinishReason == "length" {
		return nil, provider.NewError(providerName, provider.KindContextLength, "response truncated at max tokens", nil)
	}

	msg := provider.AssistantMessage(choice.Message.Content, calls...)
	return &msg, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		pe := provider.FromStatus(providerName, apiErr.StatusCode, apiErr.Message, nil, err)
		if apiErr.Response != nil {
			pe.RetryAfter = provider.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		if apiErr.Code == "context_length_exceeded" {
			pe.Kind, pe.Retryable = provider.KindContextLength, false
		}
		return pe
	}
	return provider.FromTransport(providerName, err)
}
