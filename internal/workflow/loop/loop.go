package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/tool"
	"github.com/Cyclone1070/vics/internal/workflow"
	"github.com/google/uuid"
)

// DefaultMaxIterations bounds a run when Options.MaxIterations is not positive.
const DefaultMaxIterations = 25

// Options configures a Session.
type Options struct {
	SystemPrompt  string
	MaxIterations int

	// Events receives progress for the UI. Optional.
	Events chan<- workflow.Event
	Logger *slog.Logger
}

// Session drives the conversation between one model and the tool registry.
// A session runs one task at a time; chat mode calls Run repeatedly on the
// same session so the model keeps its context.
type Session struct {
	id       string
	adapter  modelAdapter
	registry toolRegistry
	opts     Options
	logger   *slog.Logger

	mu           sync.Mutex
	conversation []provider.Message
	state        State
	iteration    int
}

// NewSession creates a session whose conversation holds only the system prompt.
func NewSession(adapter modelAdapter, registry toolRegistry, opts Options) *Session {
	if adapter == nil {
		panic("adapter is required")
	}
	if registry == nil {
		panic("registry is required")
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		id:       uuid.NewString(),
		adapter:  adapter,
		registry: registry,
		opts:     opts,
		logger:   logger,
	}
	s.Reset()
	return s
}

// RunSession runs task on a fresh session.
func RunSession(ctx context.Context, adapter modelAdapter, registry toolRegistry, opts Options, task string) FinalReport {
	return NewSession(adapter, registry, opts).Run(ctx, task)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the conversation.
func (s *Session) Transcript() []provider.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]provider.Message(nil), s.conversation...)
}

// SetEvents replaces the channel that receives progress events. It must not
// be called while Run is in progress.
func (s *Session) SetEvents(events chan<- workflow.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Events = events
}

// Reset drops everything but the system prompt.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = []provider.Message{provider.SystemMessage(s.opts.SystemPrompt)}
	s.state = StateAwaitingModel
	s.iteration = 0
}

// Run appends task to the conversation and drives the loop until the model
// answers without tool calls or the run is aborted. Tool failures never abort
// a run; they are fed back to the model as results.
func (s *Session) Run(ctx context.Context, task string) FinalReport {
	started := time.Now()
	s.mu.Lock()
	s.iteration = 0
	s.conversation = append(s.conversation, provider.UserMessage(task))
	s.mu.Unlock()

	s.setState(StateAwaitingModel)
	report := s.drive(ctx)

	report.SessionID = s.id
	report.Task = task
	report.Transcript = s.Transcript()
	report.Iterations = s.iteration
	report.StartedAt = started
	report.FinishedAt = time.Now()

	s.logger.Info("session run complete",
		"session", s.id, "state", report.State, "reason", report.Reason, "iterations", report.Iterations)
	s.emitFinal(ctx, workflow.DoneEvent{State: string(report.State), Reason: string(report.Reason), Text: report.Text})
	return report
}

func (s *Session) drive(ctx context.Context) FinalReport {
	decls := s.registry.Declarations()

	for {
		if err := ctx.Err(); err != nil {
			return s.abort(ReasonCancelled, err, "[Session cancelled by user]")
		}
		if s.iteration >= s.opts.MaxIterations {
			notice := fmt.Sprintf("[Iteration limit reached: stopped after %d iterations without a final answer. "+
				"The work done so far is kept above.]", s.iteration)
			return s.abort(ReasonIterationLimitExceeded, ErrIterationLimitExceeded, notice)
		}

		s.emit(ctx, workflow.ThinkingEvent{Iteration: s.iteration + 1})
		resp, err := s.adapter.Send(ctx, s.Transcript(), decls)
		if err == nil && resp == nil {
			err = provider.NewError("model", provider.KindMalformedResponse, "adapter returned no message", nil)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) {
				return s.abort(ReasonCancelled, err, "[Session cancelled by user]")
			}
			s.logger.Error("model request failed", "session", s.id, "error", err)
			return s.abort(ReasonProviderError, err,
				fmt.Sprintf("[Stopped: the model provider failed: %v]", err))
		}

		reply := *resp
		reply.Role = provider.RoleAssistant
		provider.EnsureCallIDs(reply.ToolCalls)
		s.append(reply)
		if reply.Content != "" && reply.HasToolCalls() {
			s.emit(ctx, workflow.TextEvent{Text: reply.Content})
		}

		if !reply.HasToolCalls() {
			s.setState(StateFinished)
			return FinalReport{State: StateFinished, Text: reply.Content}
		}

		s.setState(StateExecutingTools)
		if err := s.executeTools(ctx, reply.ToolCalls); err != nil {
			return s.abort(ReasonCancelled, err, "[Session cancelled by user]")
		}
		s.iteration++
		s.setState(StateAwaitingModel)
	}
}

// executeTools runs calls in order. If ctx is cancelled part way, the calls not
// yet started receive cancelled results so every call keeps exactly one result.
func (s *Session) executeTools(ctx context.Context, calls []provider.ToolCall) error {
	for i, call := range calls {
		if err := ctx.Err(); err != nil {
			for _, skipped := range calls[i:] {
				s.append(provider.ToolMessage(tool.Failed(skipped.ID, skipped.Name, tool.KindCancelled, "cancelled before execution")))
			}
			return err
		}
		s.logger.Debug("invoking tool", "session", s.id, "iteration", s.iteration+1, "tool", call.Name, "call_id", call.ID)
		res := s.registry.Invoke(ctx, call, s.opts.Events)
		if res.CallID == "" {
			res.CallID = call.ID
		}
		s.append(provider.ToolMessage(res))
	}
	return nil
}

func (s *Session) abort(reason Reason, err error, notice string) FinalReport {
	s.append(provider.UserMessage(notice))
	s.setState(StateAborted)
	s.logger.Warn("session aborted", "session", s.id, "reason", reason, "error", err)
	return FinalReport{State: StateAborted, Reason: reason, Err: err, Text: notice}
}

func (s *Session) append(m provider.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = append(s.conversation, m)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()
	s.logger.Debug("state transition", "session", s.id, "from", prev, "to", state)
}

func (s *Session) emit(ctx context.Context, ev workflow.Event) {
	if s.opts.Events == nil {
		return
	}
	select {
	case s.opts.Events <- ev:
	case <-ctx.Done():
	}
}

// emitFinal delivers ev even after ctx is cancelled, as long as the channel has room.
func (s *Session) emitFinal(ctx context.Context, ev workflow.Event) {
	if s.opts.Events == nil {
		return
	}
	if ctx.Err() == nil {
		s.emit(ctx, ev)
		return
	}
	select {
	case s.opts.Events <- ev:
	default:
	}
}
