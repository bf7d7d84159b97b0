package workflow

import "github.com/Cyclone1070/vics/internal/tool"

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted before each model request.
type ThinkingEvent struct {
	Iteration int
}

func (ThinkingEvent) isEvent() {}

// TextEvent is emitted when the model produces text alongside tool calls.
// The final answer arrives in DoneEvent.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	CallID         string
	ToolName       string
	RequestDisplay string // e.g. `Reading src/index.ts`
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool call has produced its result.
type ToolEndEvent struct {
	CallID   string
	ToolName string
	Result   tool.Result
}

func (ToolEndEvent) isEvent() {}

// DoneEvent is emitted once when a session run reaches a terminal state.
type DoneEvent struct {
	State  string
	Reason string
	Text   string
}

func (DoneEvent) isEvent() {}
