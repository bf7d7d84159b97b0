package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/Cyclone1070/vics/internal/ui/views"
	"github.com/Cyclone1070/vics/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// SpinnerFactory creates a new spinner
type SpinnerFactory func() spinner.Model

// DefaultSpinner is the spinner used by the terminal display.
func DefaultSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.Dot))
}

type eventMsg struct {
	event workflow.Event
}

type eventsClosedMsg struct{}

// progressModel implements tea.Model. Tool activity is printed above the
// spinner line so it stays in the scrollback after the program exits.
type progressModel struct {
	events  <-chan workflow.Event
	spinner spinner.Model

	phase   string
	message string
	done    *workflow.DoneEvent
}

func newProgressModel(events <-chan workflow.Event, spinnerFactory SpinnerFactory) progressModel {
	return progressModel{
		events:  events,
		spinner: spinnerFactory(),
		phase:   "thinking",
		message: "Thinking",
	}
}

func waitForEvent(events <-chan workflow.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m.handleEvent(msg.event)

	case eventsClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) handleEvent(ev workflow.Event) (tea.Model, tea.Cmd) {
	next := waitForEvent(m.events)

	switch ev := ev.(type) {
	case workflow.ThinkingEvent:
		m.phase = "thinking"
		m.message = fmt.Sprintf("Thinking (step %d)", ev.Iteration)
		return m, next

	case workflow.TextEvent:
		return m, tea.Sequence(tea.Println(views.RenderText(ev.Text)), next)

	case workflow.ToolStartEvent:
		m.phase = "running"
		m.message = "Running " + ev.ToolName
		return m, tea.Sequence(tea.Println(views.RenderToolStart(ev.ToolName, ev.RequestDisplay)), next)

	case workflow.ToolEndEvent:
		return m, tea.Sequence(tea.Println(views.RenderToolEnd(ev.Result)), next)

	case workflow.DoneEvent:
		m.done = &ev
		return m, tea.Quit
	}
	return m, next
}

func (m progressModel) View() string {
	if m.done != nil {
		return ""
	}
	return views.RenderStatus(m.spinner.View(), m.phase, m.message) + "\n"
}

// TerminalDisplay renders progress with a spinner on an interactive terminal.
type TerminalDisplay struct {
	out            io.Writer
	spinnerFactory SpinnerFactory
}

// NewTerminalDisplay writes to out. Keyboard input is left to the caller so
// Ctrl-C reaches the process as a signal.
func NewTerminalDisplay(out io.Writer, spinnerFactory SpinnerFactory) *TerminalDisplay {
	if out == nil {
		panic("out is required")
	}
	if spinnerFactory == nil {
		spinnerFactory = DefaultSpinner
	}
	return &TerminalDisplay{out: out, spinnerFactory: spinnerFactory}
}

func (d *TerminalDisplay) Run(ctx context.Context, events <-chan workflow.Event) (*workflow.DoneEvent, error) {
	program := tea.NewProgram(
		newProgressModel(events, d.spinnerFactory),
		tea.WithOutput(d.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
	)
	final, err := program.Run()
	if m, ok := final.(progressModel); ok && m.done != nil {
		return m.done, nil
	}
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("progress display failed: %w", err)
	}
	return nil, nil
}
