package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/logger"
	"github.com/hourglasshq/hourglass/internal/model"
)

// tickMsg is sent every second so the running timer redraws
type tickMsg time.Time

// Init initializes the model with a tick command
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		switch m.mode {
		case ModeStartEntry:
			return m.updateStartEntry(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.mode = ModeHelp

	case "j", "down":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "r":
		m.loadData()
		m.message = "Refreshed"

	case "n", "a":
		m.mode = ModeStartEntry
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "s", " ":
		if m.running != nil {
			m.stopRunning()
		} else {
			m.mode = ModeStartEntry
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		}

	case "enter":
		// Restart the selected entry's description as a new entry
		if entry := m.currentEntry(); entry != nil {
			m.startEntry(entry.Description)
		}
	}
	return m, nil
}

func (m Model) updateStartEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case "enter":
		m.mode = ModeNormal
		m.input.Blur()
		m.startEntry(strings.TrimSpace(m.input.Value()))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startEntry creates a running non-billable entry with the description.
// Billable tracking goes through the CLI or the API where the rate
// cascade applies.
func (m *Model) startEntry(description string) {
	ctx := context.Background()

	if m.running != nil {
		m.stopRunning()
	}

	now := time.Now().UTC()
	entry := model.TimeEntry{
		ID:             uuid.NewString(),
		OrganizationID: m.org.ID,
		MemberID:       m.member.ID,
		UserID:         m.user.ID,
		Description:    description,
		Start:          now,
		CreatedAt:      now,
	}
	if err := m.store.CreateTimeEntry(ctx, entry); err != nil {
		logger.Error("Failed to start entry", logger.F("error", err))
		m.message = "Failed to start entry"
		return
	}

	m.message = "Started " + displayDescription(description)
	m.loadData()
}

// stopRunning stops the current running entry.
func (m *Model) stopRunning() {
	if m.running == nil {
		return
	}
	ctx := context.Background()
	now := time.Now().UTC()

	if err := m.store.StopTimeEntry(ctx, m.org.ID, m.running.ID, now); err != nil {
		logger.Error("Failed to stop entry", logger.F("error", err))
		m.message = "Failed to stop entry"
		return
	}

	m.message = fmt.Sprintf("Stopped after %s", formatClock(m.running.DurationSeconds(now)))
	m.loadData()
}
