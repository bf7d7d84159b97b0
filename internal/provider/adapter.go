// Package provider defines the model-agnostic conversation types and the
// Adapter contract implemented by each LLM backend.
package provider

import (
	"context"

	"github.com/Cyclone1070/vics/internal/tool"
)

// Adapter sends a conversation to a model and returns its reply.
// The returned message always has RoleAssistant and every tool call has a
// non-empty id unique within the message.
type Adapter interface {
	Send(ctx context.Context, conversation []Message, specs []tool.Declaration) (*Message, error)
	// Name identifies the backend, e.g. "openai".
	Name() string
}
