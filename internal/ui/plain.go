package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/Cyclone1070/vics/internal/ui/views"
	"github.com/Cyclone1070/vics/internal/workflow"
)

// PlainDisplay writes one line per event. Used when stdout is not a terminal.
type PlainDisplay struct {
	out     io.Writer
	verbose bool
}

// NewPlainDisplay writes to out; verbose adds a line per model request.
func NewPlainDisplay(out io.Writer, verbose bool) *PlainDisplay {
	if out == nil {
		panic("out is required")
	}
	return &PlainDisplay{out: out, verbose: verbose}
}

func (d *PlainDisplay) Run(ctx context.Context, events <-chan workflow.Event) (*workflow.DoneEvent, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, nil
		case ev, ok := <-events:
			if !ok {
				return nil, nil
			}
			if done, ok := ev.(workflow.DoneEvent); ok {
				return &done, nil
			}
			d.print(ev)
		}
	}
}

func (d *PlainDisplay) print(ev workflow.Event) {
	switch ev := ev.(type) {
	case workflow.ThinkingEvent:
		if d.verbose {
			fmt.Fprintln(d.out, views.DimStyle.Render(fmt.Sprintf("── iteration %d ──", ev.Iteration)))
		}
	case workflow.TextEvent:
		fmt.Fprintln(d.out, views.RenderText(ev.Text))
	case workflow.ToolStartEvent:
		fmt.Fprintln(d.out, views.RenderToolStart(ev.ToolName, ev.RequestDisplay))
	case workflow.ToolEndEvent:
		fmt.Fprintln(d.out, views.RenderToolEnd(ev.Result))
	}
}
