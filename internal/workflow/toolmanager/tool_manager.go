package toolmanager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/tool/content"
	"github.com/Cyclone1070/vics/internal/workflow"
	"github.com/sahilm/fuzzy"
)

type entry struct {
	decl    tool.Declaration
	handler tool.Handler
}

// ToolManager maps tool names to declarations and handlers. It is populated at
// startup and read-only afterwards, so sessions may share one instance.
type ToolManager struct {
	entries        map[string]entry
	order          []string
	maxOutputChars int
	logger         *slog.Logger
}

// NewToolManager creates an empty registry. Outputs and error messages longer
// than maxOutputChars are truncated in the middle; zero disables truncation.
func NewToolManager(maxOutputChars int, logger *slog.Logger) *ToolManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolManager{
		entries:        make(map[string]entry),
		maxOutputChars: maxOutputChars,
		logger:         logger,
	}
}

// Register adds a tool. Names must be unique.
func (m *ToolManager) Register(decl tool.Declaration, h tool.Handler) error {
	if decl.Name == "" {
		return fmt.Errorf("tool declaration has no name")
	}
	if h == nil {
		return fmt.Errorf("tool %q: handler is required", decl.Name)
	}
	if _, ok := m.entries[decl.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, decl.Name)
	}
	m.entries[decl.Name] = entry{decl: decl, handler: h}
	m.order = append(m.order, decl.Name)
	return nil
}

// Declarations returns every registered declaration in registration order.
func (m *ToolManager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.order))
	for _, name := range m.order {
		decls = append(decls, m.entries[name].decl)
	}
	return decls
}

// Invoke validates and runs one tool call and always returns a result for it.
// Failures of any kind are reported inside the result, never as an error.
func (m *ToolManager) Invoke(ctx context.Context, call provider.ToolCall, events chan<- workflow.Event) tool.Result {
	e, ok := m.entries[call.Name]
	if !ok {
		res := tool.Failed(call.ID, call.Name, tool.KindUnknownTool, m.unknownToolMessage(call.Name))
		m.emit(ctx, events, workflow.ToolStartEvent{CallID: call.ID, ToolName: call.Name})
		m.emit(ctx, events, workflow.ToolEndEvent{CallID: call.ID, ToolName: call.Name, Result: res})
		return res
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	display := ""
	if d, ok := e.handler.(describer); ok {
		display = d.Describe(args)
	}
	m.emit(ctx, events, workflow.ToolStartEvent{CallID: call.ID, ToolName: call.Name, RequestDisplay: display})

	res := m.run(ctx, e, call.ID, args)

	m.logger.Debug("tool invoked", "tool", call.Name, "call_id", call.ID, "status", res.Status, "kind", res.Kind)
	m.emit(ctx, events, workflow.ToolEndEvent{CallID: call.ID, ToolName: call.Name, Result: res})
	return res
}

func (m *ToolManager) run(ctx context.Context, e entry, callID string, args map[string]any) (res tool.Result) {
	name := e.decl.Name

	if err := e.decl.Parameters.Validate(args); err != nil {
		return tool.Failed(callID, name, tool.KindValidation, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return tool.Failed(callID, name, tool.KindCancelled, "cancelled before execution")
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("tool panicked", "tool", name, "panic", r)
			res = tool.Failed(callID, name, tool.KindExecution, fmt.Sprintf("tool panicked: %v", r))
		}
	}()

	out, err := e.handler.Execute(ctx, args)
	if err != nil {
		return tool.Failed(callID, name, tool.Classify(err), content.TruncateMiddle(err.Error(), m.maxOutputChars))
	}
	return tool.OK(callID, name, content.TruncateMiddle(out, m.maxOutputChars))
}

func (m *ToolManager) unknownToolMessage(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tool %q does not exist.", name)
	if matches := fuzzy.Find(name, m.order); len(matches) > 0 {
		fmt.Fprintf(&b, " Did you mean %q?", matches[0].Str)
	}
	b.WriteString(" Available tools: ")
	b.WriteString(strings.Join(m.order, ", "))
	return b.String()
}

func (m *ToolManager) emit(ctx context.Context, events chan<- workflow.Event, ev workflow.Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
