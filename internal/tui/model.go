package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/hourglasshq/hourglass/internal/logger"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeStartEntry
	ModeHelp
)

// Model is the timer TUI model: today's entries for the acting member
// plus the running entry, if any.
type Model struct {
	store  *store.Store
	org    model.Organization
	member model.Member
	user   model.User

	entries []model.TimeEntry
	running *model.TimeEntry

	// UI state
	width  int
	height int
	mode   Mode
	cursor int

	// Input for new entry descriptions
	input textinput.Model

	message string
}

// NewModel creates the timer model for one acting member.
func NewModel(st *store.Store, org model.Organization, member model.Member, user model.User) Model {
	logger.Info("Initializing TUI model",
		logger.F("organization", org.ID),
		logger.F("member", member.ID))

	ti := textinput.New()
	ti.Placeholder = "What are you working on?"
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		store:  st,
		org:    org,
		member: member,
		user:   user,
		mode:   ModeNormal,
		input:  ti,
	}
	m.loadData()
	return m
}

// loadData reloads today's entries and the running entry.
func (m *Model) loadData() {
	ctx := context.Background()

	loc := time.Local
	if l, err := time.LoadLocation(m.user.Timezone); err == nil {
		loc = l
	}
	now := time.Now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).UTC()
	dayEnd := dayStart.Add(24 * time.Hour)

	entries, err := m.store.ListTimeEntries(ctx, store.EntryFilter{
		OrganizationID: m.org.ID,
		MemberIDs:      []string{m.member.ID},
		Start:          &dayStart,
		End:            &dayEnd,
	})
	if err != nil {
		logger.Error("Failed to load entries", logger.F("error", err))
	}
	m.entries = entries
	if m.cursor >= len(m.entries) {
		m.cursor = 0
	}

	m.running = nil
	running, err := m.store.RunningEntries(ctx, m.org.ID, m.member.ID)
	if err != nil {
		logger.Error("Failed to load running entry", logger.F("error", err))
	}
	if len(running) > 0 {
		m.running = &running[0]
	}
}

func (m *Model) currentEntry() *model.TimeEntry {
	if m.cursor < len(m.entries) {
		return &m.entries[m.cursor]
	}
	return nil
}
