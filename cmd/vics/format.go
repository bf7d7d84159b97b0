package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/Cyclone1070/vics/internal/storage"
	"github.com/Cyclone1070/vics/internal/ui/views"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	shortIDLength   = 8
	taskPreviewLen  = 60
	systemPreview   = 120
	timestampFormat = "2006-01-02 15:04"
)

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func formatRunTable(runs []storage.Summary) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format(timestampFormat),
			r.Provider + "/" + r.Model,
			r.State,
			strconv.Itoa(r.Iterations),
			views.Preview(r.Task, taskPreviewLen),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STARTED", "MODEL", "STATE", "ITER", "TASK").
		Rows(rows...).
		String()
}

// formatRecord prints a stored run followed by its transcript.
func formatRecord(w io.Writer, rec *storage.Record) {
	fmt.Fprintf(w, "Run:        %s\n", rec.ID)
	fmt.Fprintf(w, "Session:    %s\n", rec.SessionID)
	fmt.Fprintf(w, "Model:      %s/%s\n", rec.Provider, rec.Model)
	fmt.Fprintf(w, "Workspace:  %s\n", rec.Workspace)
	state := rec.State
	if rec.Reason != "" {
		state += " (" + rec.Reason + ")"
	}
	fmt.Fprintf(w, "State:      %s\n", state)
	fmt.Fprintf(w, "Iterations: %d\n", rec.Iterations)
	fmt.Fprintf(w, "Started:    %s (%s)\n",
		rec.StartedAt.Local().Format(timestampFormat),
		rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "Task:       %s\n\n", rec.Task)

	for _, msg := range rec.Transcript {
		formatMessage(w, msg)
	}
}

func formatMessage(w io.Writer, msg provider.Message) {
	switch msg.Role {
	case provider.RoleSystem:
		fmt.Fprintf(w, "[system] %s\n", views.Preview(msg.Content, systemPreview))
	case provider.RoleUser:
		fmt.Fprintf(w, "[user] %s\n", msg.Content)
	case provider.RoleAssistant:
		if msg.Content != "" {
			fmt.Fprintf(w, "[assistant] %s\n", msg.Content)
		}
		for _, call := range msg.ToolCalls {
			fmt.Fprintf(w, "[assistant] call %s %s(%s)\n", call.ID, call.Name, formatArgs(call.Arguments))
		}
	case provider.RoleTool:
		if msg.ToolResult == nil {
			fmt.Fprintf(w, "[tool] %s\n", msg.Content)
			return
		}
		res := msg.ToolResult
		fmt.Fprintf(w, "[tool %s %s] %s\n", res.Name, res.CallID, indent(res.Content()))
	}
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return string(data)
}

// indent keeps multi-line tool output visually attached to its header.
func indent(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n    ")
}
