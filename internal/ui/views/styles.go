package views

import "github.com/charmbracelet/lipgloss"

var (
	StatusThinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	StatusRunningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	ToolNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	ToolResultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ToolErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	AssistantTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("87"))
	NoticeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	DimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
