package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// GlamourRenderer renders markdown with glamour, picking a style for the terminal.
type GlamourRenderer struct {
	renderer *glamour.TermRenderer
}

// NewGlamourRenderer wraps text at width columns.
func NewGlamourRenderer(width int) (*GlamourRenderer, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &GlamourRenderer{renderer: r}, nil
}

func (g *GlamourRenderer) Render(markdown string) (string, error) {
	return g.renderer.Render(markdown)
}

// PlainRenderer returns markdown unchanged. Used when output is not a terminal.
type PlainRenderer struct{}

func (PlainRenderer) Render(markdown string) (string, error) {
	return strings.TrimSpace(markdown) + "\n", nil
}
