package loop

import (
	"context"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/workflow"
)

// modelAdapter communicates with an LLM.
type modelAdapter interface {
	// Send returns the model's reply to the conversation.
	Send(ctx context.Context, conversation []provider.Message, specs []tool.Declaration) (*provider.Message, error)
}

// toolRegistry stores and dispatches tools.
type toolRegistry interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// Invoke runs one call and returns its result. It never fails; errors are
	// carried in the result. It emits ToolStartEvent and ToolEndEvent.
	Invoke(ctx context.Context, call provider.ToolCall, events chan<- workflow.Event) tool.Result
}
