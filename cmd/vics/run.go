package main

import (
	"context"
	"errors"

	"github.com/Cyclone1070/vics/internal/storage"
	"github.com/Cyclone1070/vics/internal/ui"
	"github.com/Cyclone1070/vics/internal/workflow"
	"github.com/Cyclone1070/vics/internal/workflow/loop"
)

// errRunAborted is returned by ask when the session did not finish.
var errRunAborted = errors.New("run aborted")

const eventBuffer = 64

// runTask runs one task on session while the display follows its events,
// prints the final answer and records the run in history.
func (a *App) runTask(ctx context.Context, rt *Runtime, session *loop.Session, task string) loop.FinalReport {
	events := make(chan workflow.Event, eventBuffer)
	session.SetEvents(events)
	defer session.SetEvents(nil)

	reports := make(chan loop.FinalReport, 1)
	go func() {
		defer close(events)
		reports <- session.Run(ctx, task)
	}()

	if _, err := rt.Display.Run(ctx, events); err != nil {
		rt.Logger.Warn("display stopped", "error", err)
	}
	// drain whatever the display left behind so the run can finish
	for range events {
	}
	report := <-reports

	ui.PrintAnswer(a.Stdout, rt.Renderer, report.Text, report.Succeeded())
	a.saveReport(rt, report)
	return report
}

func (a *App) saveReport(rt *Runtime, report loop.FinalReport) {
	if rt.History == nil {
		return
	}
	rec := &storage.Record{
		SessionID:  report.SessionID,
		Task:       report.Task,
		Provider:   rt.Adapter.Name(),
		Model:      rt.Config.Provider.ActiveModel(),
		Workspace:  rt.Guard.Root(),
		State:      string(report.State),
		Reason:     string(report.Reason),
		Text:       report.Text,
		Iterations: report.Iterations,
		Transcript: report.Transcript,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}
	// the run's own context may already be cancelled
	if err := rt.History.Save(context.Background(), rec); err != nil {
		rt.Logger.Warn("failed to save run to history", "error", err)
		return
	}
	rt.Logger.Debug("run saved", "id", rec.ID)
}
