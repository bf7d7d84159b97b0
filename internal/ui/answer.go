package ui

import (
	"fmt"
	"io"

	"github.com/Cyclone1070/vics/internal/ui/views"
)

// PrintAnswer writes the final text of a run. Finished runs are rendered as
// markdown; aborted runs print their notice.
func PrintAnswer(out io.Writer, renderer MarkdownRenderer, text string, finished bool) {
	if !finished {
		fmt.Fprintln(out, views.RenderNotice(text))
		return
	}
	if text == "" {
		return
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		rendered = text + "\n"
	}
	fmt.Fprint(out, rendered)
}
