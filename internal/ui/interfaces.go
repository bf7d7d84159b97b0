package ui

import (
	"context"

	"github.com/Cyclone1070/vics/internal/workflow"
)

// Display shows the progress of one run. Run returns when it sees a
// DoneEvent, when events is closed or when ctx is cancelled.
type Display interface {
	Run(ctx context.Context, events <-chan workflow.Event) (*workflow.DoneEvent, error)
}

// MarkdownRenderer turns the model's final answer into terminal output.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}
