package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#4ECDC4")
	Running   = lipgloss.Color("#95E1A3") // Green
	Billable  = lipgloss.Color("#FFE66D") // Yellow
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Surface   = lipgloss.Color("#16213e")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	TimerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Running).
			Padding(0, 1)

	EntryStyle = lipgloss.NewStyle().
			Padding(0, 1)

	EntrySelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	BillableStyle = lipgloss.NewStyle().
			Foreground(Billable)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
