package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
	"google.golang.org/genai"
)

// toGeminiContents converts the non-system conversation to Gemini Content format.
// Consecutive tool messages are grouped into one user turn of function responses.
func toGeminiContents(conv []provider.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(conv))

	for _, msg := range conv {
		switch msg.Role {
		case provider.RoleAssistant:
			parts := make([]*genai.Part, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: call.Arguments,
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}

		case provider.RoleTool:
			part := functionResponsePart(msg)
			if n := len(contents); n > 0 && isFunctionResponseTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{part}})

		default:
			if msg.Content == "" {
				continue
			}
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		}
	}

	return contents
}

func functionResponsePart(msg provider.Message) *genai.Part {
	resp := &genai.FunctionResponse{Response: map[string]any{}}
	if r := msg.ToolResult; r != nil {
		resp.ID = r.CallID
		resp.Name = r.Name
		if r.IsError() {
			resp.Response["error"] = r.Content()
		} else {
			resp.Response["output"] = r.Output
		}
	} else {
		resp.Response["output"] = msg.Content
	}
	return &genai.Part{FunctionResponse: resp}
}

func isFunctionResponseTurn(c *genai.Content) bool {
	if c.Role != "user" || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

// toGeminiConfig builds the generation config.
func toGeminiConfig(system string, opts Options) *genai.GenerateContentConfig {
	temp := float32(opts.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:    &temp,
		SafetySettings: defaultSafetySettings(),
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(system)}}
	}
	return config
}

// defaultSafetySettings returns safety settings with blocking off for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategoryHarassment,
		genai.HarmCategorySexuallyExplicit,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdOff})
	}
	return settings
}

// toGeminiTools converts tool declarations to Gemini tools.
func toGeminiTools(specs []tool.Declaration) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		fd := &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
		}
		if spec.Parameters != nil {
			fd.Parameters = toGeminiSchema(spec.Parameters)
		}
		decls = append(decls, fd)
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// toGeminiSchema converts a tool schema recursively.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	if s.Items != nil {
		out.Items = toGeminiSchema(s.Items)
	}
	return out
}

func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to an assistant message.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (*provider.Message, error) {
	if resp == nil {
		return nil, provider.NewError(providerName, provider.KindMalformedResponse, "empty response", nil)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, provider.NewError(providerName, provider.KindContentBlocked,
			fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason), nil)
	}
	if len(resp.Candidates) == 0 {
		return nil, provider.NewError(providerName, provider.KindMalformedResponse, "no candidates in response", nil)
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
		return nil, provider.NewError(providerName, provider.KindContentBlocked, "content blocked by safety filters", nil)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason == genai.FinishReasonMaxTokens {
			return nil, provider.NewError(providerName, provider.KindContextLength, "response truncated due to max tokens", nil)
		}
		return nil, provider.NewError(providerName, provider.KindMalformedResponse, "candidate has no content", nil)
	}

	var text strings.Builder
	var calls []provider.ToolCall
	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			calls = append(calls, provider.ToolCall{
				ID:        part.FunctionCall.ID,
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	provider.EnsureCallIDs(calls)

	msg := provider.AssistantMessage(text.String(), calls...)
	return &msg, nil
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return provider.FromStatus(providerName, apiErr.Code, apiErr.Message, nil, err)
	}
	var apiVal genai.APIError
	if errors.As(err, &apiVal) {
		return provider.FromStatus(providerName, apiVal.Code, apiVal.Message, nil, err)
	}
	return provider.FromTransport(providerName, err)
}
