package loop

import (
	"context"
	"errors"
	"testing"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAdapter replays replies in order and records every conversation it saw.
type scriptedAdapter struct {
	replies []func(ctx context.Context, conv []provider.Message) (*provider.Message, error)
	seen    [][]provider.Message
}

func (a *scriptedAdapter) Send(ctx context.Context, conv []provider.Message, _ []tool.Declaration) (*provider.Message, error) {
	a.seen = append(a.seen, conv)
	i := len(a.seen) - 1
	if i >= len(a.replies) {
		return nil, errors.New("script exhausted")
	}
	return a.replies[i](ctx, conv)
}

func reply(msg provider.Message) func(context.Context, []provider.Message) (*provider.Message, error) {
	return func(context.Context, []provider.Message) (*provider.Message, error) {
		return &msg, nil
	}
}

type mockRegistry struct {
	declarations []tool.Declaration
	invokeFunc   func(ctx context.Context, call provider.ToolCall) tool.Result
	invoked      []provider.ToolCall
}

func (m *mockRegistry) Declarations() []tool.Declaration { return m.declarations }

func (m *mockRegistry) Invoke(ctx context.Context, call provider.ToolCall, _ chan<- workflow.Event) tool.Result {
	m.invoked = append(m.invoked, call)
	if m.invokeFunc != nil {
		return m.invokeFunc(ctx, call)
	}
	return tool.OK(call.ID, call.Name, "ok")
}

func call(id, name string) provider.ToolCall {
	return provider.ToolCall{ID: id, Name: name, Arguments: map[string]any{}}
}

func TestRun_TextOnly_Finishes(t *testing.T) {
	events := make(chan workflow.Event, 10)
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("Hello!")),
	}}

	report := NewSession(adapter, &mockRegistry{}, Options{Events: events}).Run(context.Background(), "Hi")

	assert.Equal(t, StateFinished, report.State)
	assert.True(t, report.Succeeded())
	assert.Equal(t, "Hello!", report.Text)
	assert.Equal(t, 0, report.Iterations)
	assert.NotEmpty(t, report.SessionID)
	require.Len(t, report.Transcript, 3)
	assert.Equal(t, provider.RoleSystem, report.Transcript[0].Role)
	assert.Equal(t, provider.UserMessage("Hi"), report.Transcript[1])

	assert.Equal(t, workflow.ThinkingEvent{Iteration: 1}, <-events)
	assert.Equal(t, workflow.DoneEvent{State: "finished", Text: "Hello!"}, <-events)
}

func TestRun_ToolCalls_ResultsAppendedInOrder(t *testing.T) {
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("working", call("a", "first"), call("b", "second"))),
		reply(provider.AssistantMessage("done")),
	}}
	registry := &mockRegistry{}

	report := NewSession(adapter, registry, Options{}).Run(context.Background(), "task")

	require.Equal(t, StateFinished, report.State)
	assert.Equal(t, 1, report.Iterations)
	assert.Equal(t, []string{"first", "second"}, []string{registry.invoked[0].Name, registry.invoked[1].Name})

	// second request sees system, user, assistant, tool a, tool b
	require.Len(t, adapter.seen[1], 5)
	assert.Equal(t, "a", adapter.seen[1][3].ToolResult.CallID)
	assert.Equal(t, "b", adapter.seen[1][4].ToolResult.CallID)
}

func TestRun_MissingCallIDs_Assigned(t *testing.T) {
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("", call("", "x"), call("", "y"))),
		reply(provider.AssistantMessage("done")),
	}}
	registry := &mockRegistry{}

	NewSession(adapter, registry, Options{}).Run(context.Background(), "task")

	require.Len(t, registry.invoked, 2)
	assert.NotEmpty(t, registry.invoked[0].ID)
	assert.NotEqual(t, registry.invoked[0].ID, registry.invoked[1].ID)
}

func TestRun_ToolError_FedBackAndLoopContinues(t *testing.T) {
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("", call("a", "read_file"))),
		reply(provider.AssistantMessage("file is missing, sorry")),
	}}
	registry := &mockRegistry{invokeFunc: func(_ context.Context, c provider.ToolCall) tool.Result {
		return tool.Failed(c.ID, c.Name, tool.KindNotFound, "file not found: x.txt")
	}}

	report := NewSession(adapter, registry, Options{}).Run(context.Background(), "read x.txt")

	assert.Equal(t, StateFinished, report.State)
	toolMsg := adapter.seen[1][3]
	assert.Equal(t, provider.RoleTool, toolMsg.Role)
	assert.Equal(t, "Error (not_found): file not found: x.txt", toolMsg.Content)
}

func TestRun_IterationLimit_AbortsRegardlessOfCallsPerTurn(t *testing.T) {
	const limit = 3
	many := make([]provider.ToolCall, 10)
	for i := range many {
		many[i] = call("", "think")
	}
	var replies []func(context.Context, []provider.Message) (*provider.Message, error)
	for range limit + 5 {
		replies = append(replies, func(context.Context, []provider.Message) (*provider.Message, error) {
			calls := append([]provider.ToolCall(nil), many...)
			msg := provider.AssistantMessage("", calls...)
			return &msg, nil
		})
	}
	adapter := &scriptedAdapter{replies: replies}
	registry := &mockRegistry{}

	report := NewSession(adapter, registry, Options{MaxIterations: limit}).Run(context.Background(), "loop forever")

	assert.Equal(t, StateAborted, report.State)
	assert.Equal(t, ReasonIterationLimitExceeded, report.Reason)
	assert.ErrorIs(t, report.Err, ErrIterationLimitExceeded)
	assert.Equal(t, limit, report.Iterations)
	assert.Len(t, adapter.seen, limit)
	assert.Len(t, registry.invoked, limit*10)

	last := report.Transcript[len(report.Transcript)-1]
	assert.Equal(t, provider.RoleUser, last.Role)
	assert.Contains(t, last.Content, "[Iteration limit reached")
	assert.Equal(t, last.Content, report.Text)
}

func TestRun_ProviderError_AbortsWithTranscript(t *testing.T) {
	provErr := provider.NewError("openai", provider.KindAuth, "bad key", nil)
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("", call("a", "think"))),
		func(context.Context, []provider.Message) (*provider.Message, error) { return nil, provErr },
	}}

	report := NewSession(adapter, &mockRegistry{}, Options{}).Run(context.Background(), "task")

	assert.Equal(t, StateAborted, report.State)
	assert.Equal(t, ReasonProviderError, report.Reason)
	assert.ErrorIs(t, report.Err, provErr)
	// system, user, assistant, tool, notice
	require.Len(t, report.Transcript, 5)
	assert.Contains(t, report.Transcript[4].Content, "bad key")
}

func TestRun_NilReply_IsProviderError(t *testing.T) {
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		func(context.Context, []provider.Message) (*provider.Message, error) { return nil, nil },
	}}

	report := NewSession(adapter, &mockRegistry{}, Options{}).Run(context.Background(), "task")

	assert.Equal(t, ReasonProviderError, report.Reason)
	assert.Equal(t, provider.KindMalformedResponse, provider.KindOf(report.Err))
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	adapter := &scriptedAdapter{}

	report := NewSession(adapter, &mockRegistry{}, Options{}).Run(ctx, "task")

	assert.Equal(t, ReasonCancelled, report.Reason)
	assert.ErrorIs(t, report.Err, context.Canceled)
	assert.Empty(t, adapter.seen)
}

func TestRun_CancelledDuringTools_RemainingCallsGetCancelledResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("", call("a", "one"), call("b", "two"), call("c", "three"))),
	}}
	registry := &mockRegistry{invokeFunc: func(_ context.Context, c provider.ToolCall) tool.Result {
		cancel()
		return tool.OK(c.ID, c.Name, "ran")
	}}

	report := NewSession(adapter, registry, Options{}).Run(ctx, "task")

	assert.Equal(t, StateAborted, report.State)
	assert.Equal(t, ReasonCancelled, report.Reason)
	assert.Len(t, registry.invoked, 1)

	var results []tool.Result
	for _, m := range report.Transcript {
		if m.ToolResult != nil {
			results = append(results, *m.ToolResult)
		}
	}
	require.Len(t, results, 3)
	assert.Equal(t, tool.StatusOK, results[0].Status)
	assert.Equal(t, tool.KindCancelled, results[1].Kind)
	assert.Equal(t, "c", results[2].CallID)
	assert.Equal(t, tool.KindCancelled, results[2].Kind)
}

func TestRun_CancelledDuringModelRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		func(ctx context.Context, _ []provider.Message) (*provider.Message, error) {
			cancel()
			return nil, ctx.Err()
		},
	}}

	report := NewSession(adapter, &mockRegistry{}, Options{}).Run(ctx, "task")

	assert.Equal(t, ReasonCancelled, report.Reason)
}

func TestSession_ChatKeepsContextAcrossRuns(t *testing.T) {
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("first")),
		reply(provider.AssistantMessage("second")),
	}}
	s := NewSession(adapter, &mockRegistry{}, Options{SystemPrompt: "be brief"})

	s.Run(context.Background(), "one")
	report := s.Run(context.Background(), "two")

	assert.Equal(t, "second", report.Text)
	require.Len(t, adapter.seen[1], 4)
	assert.Equal(t, "be brief", adapter.seen[1][0].Content)
	assert.Equal(t, "first", adapter.seen[1][2].Content)
}

func TestSession_Reset_KeepsOnlySystemPrompt(t *testing.T) {
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("hi")),
	}}
	s := NewSession(adapter, &mockRegistry{}, Options{})
	s.Run(context.Background(), "hello")

	s.Reset()

	transcript := s.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, DefaultSystemPrompt, transcript[0].Content)
	assert.Equal(t, StateAwaitingModel, s.State())
}

func TestNewSession_PanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { NewSession(nil, &mockRegistry{}, Options{}) })
	assert.Panics(t, func() { NewSession(&scriptedAdapter{}, nil, Options{}) })
}

func TestSession_SetEvents_RoutesLaterRuns(t *testing.T) {
	adapter := &scriptedAdapter{replies: []func(context.Context, []provider.Message) (*provider.Message, error){
		reply(provider.AssistantMessage("one")),
		reply(provider.AssistantMessage("two")),
	}}
	s := NewSession(adapter, &mockRegistry{}, Options{})
	s.Run(context.Background(), "first")

	events := make(chan workflow.Event, 4)
	s.SetEvents(events)
	s.Run(context.Background(), "second")
	close(events)

	var got []workflow.Event
	for ev := range events {
		got = append(got, ev)
	}
	assert.Equal(t, []workflow.Event{
		workflow.ThinkingEvent{Iteration: 1},
		workflow.DoneEvent{State: "finished", Text: "two"},
	}, got)
}
