package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/vics/internal/tool"
)

// MaxResultPreview is how many characters of a tool result are shown inline.
const MaxResultPreview = 200

// RenderStatus renders the spinner line shown while a run is in progress.
func RenderStatus(spinnerView, phase, message string) string {
	style := StatusThinkingStyle
	if phase == "running" {
		style = StatusRunningStyle
	}
	if message == "" {
		message = "Working"
	}
	return style.Render(fmt.Sprintf("%s %s", spinnerView, message))
}

// RenderToolStart renders the line printed when a tool call begins.
func RenderToolStart(name, display string) string {
	if display == "" {
		return fmt.Sprintf("  ⚡ %s", ToolNameStyle.Render(name))
	}
	return fmt.Sprintf("  ⚡ %s %s", ToolNameStyle.Render(name), display)
}

// RenderToolEnd renders a one-line preview of a tool result.
func RenderToolEnd(res tool.Result) string {
	preview := Preview(res.Content(), MaxResultPreview)
	if res.IsError() {
		return "    " + ToolErrorStyle.Render("✗ "+preview)
	}
	return "    " + ToolResultStyle.Render("→ "+preview)
}

// RenderText renders text the model emitted alongside tool calls.
func RenderText(text string) string {
	return AssistantTextStyle.Render(strings.TrimSpace(text))
}

// RenderNotice renders an abort notice.
func RenderNotice(text string) string {
	return NoticeStyle.Render(text)
}

// Preview flattens s onto one line and cuts it at maxRunes.
func Preview(s string, maxRunes int) string {
	flat := strings.Join(strings.Fields(s), " ")
	runes := []rune(flat)
	if len(runes) <= maxRunes {
		return flat
	}
	return string(runes[:maxRunes]) + "…"
}
