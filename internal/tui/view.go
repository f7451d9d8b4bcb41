package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	entryList := m.renderEntries()
	statusBar := m.renderStatusBar()

	content := lipgloss.JoinVertical(lipgloss.Left, header, entryList)

	if m.mode == ModeStartEntry {
		modal := ModalStyle.Render("Start entry\n\n" + m.input.View() + "\n\n" + HelpStyle.Render("enter: start  esc: cancel"))
		content = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			modal,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		content = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			ModalStyle.Render(helpText()),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render(fmt.Sprintf("⏳ %s", m.org.Name))

	timer := MutedStyle.Render("no entry running")
	if m.running != nil {
		elapsed := formatClock(m.running.DurationSeconds(time.Now().UTC()))
		desc := displayDescription(m.running.Description)
		timer = TimerStyle.Render(fmt.Sprintf("▶ %s  %s", elapsed, desc))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, timer, "")
}

func (m Model) renderEntries() string {
	if len(m.entries) == 0 {
		return EntryStyle.Render(MutedStyle.Render("No entries today. Press 's' to start one."))
	}

	var b strings.Builder
	b.WriteString(MutedStyle.Render(" Today"))
	b.WriteString("\n")

	now := time.Now().UTC()
	for i, e := range m.entries {
		marker := " "
		if e.IsRunning() {
			marker = "▶"
		}

		billable := "  "
		if e.Billable {
			billable = BillableStyle.Render("$ ")
		}

		line := fmt.Sprintf("%s %s%-40s %s",
			marker,
			billable,
			truncate(displayDescription(e.Description), 40),
			formatClock(e.DurationSeconds(now)))

		if i == m.cursor {
			b.WriteString(EntrySelectedStyle.Render(line))
		} else {
			b.WriteString(EntryStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	left := m.message
	if left == "" {
		left = fmt.Sprintf("%d entries today", len(m.entries))
	}
	help := "s: start/stop  n: new  enter: restart  r: refresh  ?: help  q: quit"
	return StatusBarStyle.Width(m.width).Render(left + "  " + HelpStyle.Render(help))
}

func helpText() string {
	return strings.Join([]string{
		"Keys",
		"",
		"  s, space   start or stop the timer",
		"  n, a       start a new entry with a description",
		"  enter      restart the selected entry",
		"  j/k        move selection",
		"  r          reload from the database",
		"  q          quit",
		"",
		HelpStyle.Render("any key to close"),
	}, "\n")
}

// formatClock renders seconds as H:MM:SS.
func formatClock(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func displayDescription(desc string) string {
	if desc == "" {
		return "(no description)"
	}
	return desc
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
