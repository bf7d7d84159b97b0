// Package think provides a scratchpad tool that lets the model reason out loud.
package think

import (
	"context"

	"github.com/Cyclone1070/vics/internal/tool"
)

// Acknowledgement is returned for every recorded thought.
const Acknowledgement = "Thought recorded. Continue with your plan."

// ThinkRequest is the input of think.
type ThinkRequest struct {
	Thought string `mapstructure:"thought"`
}

func (r ThinkRequest) String() string {
	return "Thinking"
}

// ThinkTool has no side effects.
type ThinkTool struct{}

func NewThinkTool() *ThinkTool {
	return &ThinkTool{}
}

func (t *ThinkTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "think",
		Description: "Record a thought or plan before acting. Has no effect on the workspace.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"thought": {Type: tool.TypeString, Description: "Your reasoning"},
			},
			Required: []string{"thought"},
		},
	}
}

func (t *ThinkTool) Handler() tool.Handler {
	return tool.HandlerFunc[ThinkRequest](t.Run)
}

func (t *ThinkTool) Run(_ context.Context, _ ThinkRequest) (string, error) {
	return Acknowledgement, nil
}
