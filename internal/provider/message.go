package provider

import (
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation.
// Assistant messages may carry ToolCalls; tool messages carry exactly one ToolResult.
type Message struct {
	Role       Role         `json:"role"`
	Content    string       `json:"content,omitempty"`
	ToolCalls  []ToolCall   `json:"tool_calls,omitempty"`
	ToolResult *tool.Result `json:"tool_result,omitempty"`
}

// ToolCall is a request from the model to run a tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func AssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolMessage wraps a tool result for the conversation.
func ToolMessage(result tool.Result) Message {
	r := result
	return Message{Role: RoleTool, Content: r.Content(), ToolResult: &r}
}

// HasToolCalls reports whether the message requests tool execution.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// EnsureCallIDs assigns a UUID to every tool call that arrived without an id
// and to duplicates within the same message.
func EnsureCallIDs(calls []ToolCall) {
	seen := make(map[string]bool, len(calls))
	for i := range calls {
		if calls[i].ID == "" || seen[calls[i].ID] {
			calls[i].ID = "call_" + uuid.NewString()
		}
		seen[calls[i].ID] = true
		if calls[i].Arguments == nil {
			calls[i].Arguments = map[string]any{}
		}
	}
}

// SplitSystem separates leading system messages from the rest of the conversation.
// Adapters whose wire format carries the system prompt out of band use it.
func SplitSystem(conv []Message) (system string, rest []Message) {
	var sys []string
	for _, m := range conv {
		if m.Role == RoleSystem {
			sys = append(sys, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	for i, s := range sys {
		if i > 0 {
			system += "\n\n"
		}
		system += s
	}
	return system, rest
}
