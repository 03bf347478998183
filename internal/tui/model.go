// Package tui is the guestbook frontend: a Bubble Tea program that lists,
// signs, edits and deletes entries through the REST API.
package tui

import (
	"context"
	"strings"
	"time"

	"guestbook/internal/client"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const (
	alertMissingFields = "Please fill in both fields"
	alertFetchFailed   = "Failed to load entries. Please try again."
	alertSaveFailed    = "Failed to save entry. Please try again."
	alertDeleteFailed  = "Failed to delete entry. Please try again."
)

// API is the part of client.Client the UI needs.
type API interface {
	List(ctx context.Context) ([]client.Entry, error)
	Create(ctx context.Context, name, message string) (client.Entry, error)
	Update(ctx context.Context, id int64, name, message string) (client.Entry, error)
	Delete(ctx context.Context, id int64) error
}

type State int

const (
	StateLoading State = iota
	StateViewing
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEditing:
		return "editing"
	default:
		return "viewing"
	}
}

type focus int

const (
	focusName focus = iota
	focusMessage
	focusList
	focusCount
)

type entriesMsg struct {
	seq     int
	entries []client.Entry
	err     error
}

type savedMsg struct{ err error }

type deletedMsg struct{ err error }

type Model struct {
	api     API
	log     zerolog.Logger
	timeout time.Duration

	entries []client.Entry
	cursor  int
	loading bool
	// fetchSeq numbers list requests; only the newest response is applied.
	fetchSeq int

	editingID     int64
	pendingDelete *client.Entry
	alert         string

	focus   focus
	name    textinput.Model
	message textarea.Model
	width   int
}

// New returns the initial model. Init issues the first fetch.
func New(api API, log zerolog.Logger, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	name := textinput.New()
	name.Placeholder = "Your Name"
	name.Prompt = "> "
	name.CharLimit = 0

	message := textarea.New()
	message.Placeholder = "Your Message"
	message.ShowLineNumbers = false
	message.CharLimit = 0
	message.MaxHeight = 0
	message.SetHeight(4)

	m := Model{
		api:      api,
		log:      log,
		timeout:  timeout,
		loading:  true,
		fetchSeq: 1,
		name:     name,
		message:  message,
		width:    80,
	}
	m.setFocus(focusName)
	return m
}

func (m Model) Init() tea.Cmd {
	return m.fetchCmd(m.fetchSeq)
}

// State reports the UI state.
func (m Model) State() State {
	switch {
	case m.loading:
		return StateLoading
	case m.editingID != 0:
		return StateEditing
	default:
		return StateViewing
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.name.Width = max(msg.Width-10, 10)
		m.message.SetWidth(max(msg.Width-6, 10))
		return m, nil

	case entriesMsg:
		if msg.seq != m.fetchSeq {
			m.log.Debug().Int("seq", msg.seq).Int("latest", m.fetchSeq).Msg("dropping stale entries response")
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("fetch entries failed")
			m.entries = nil
			m.alert = alertFetchFailed
		} else {
			m.log.Debug().Int("count", len(msg.entries)).Msg("entries received")
			m.entries = msg.entries
		}
		m.clampCursor()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Int64("editing_id", m.editingID).Msg("save entry failed")
			m.alert = alertSaveFailed
			return m, nil
		}
		m.resetForm()
		return m, m.startFetch()

	case deletedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("delete entry failed")
			m.alert = alertDeleteFailed
			return m, nil
		}
		return m, m.startFetch()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.pendingDelete != nil {
		switch key {
		case "y", "Y":
			id := m.pendingDelete.ID
			m.pendingDelete = nil
			return m, m.deleteCmd(id)
		case "n", "N", "esc":
			m.pendingDelete = nil
		}
		return m, nil
	}

	m.alert = ""
	switch key {
	case "ctrl+s":
		return m.submit()
	case "tab":
		return m, m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "esc":
		if m.editingID != 0 {
			m.resetForm()
			return m, nil
		}
		return m, m.setFocus(focusList)
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(key)
	case focusName:
		if key == "enter" {
			return m, m.setFocus(focusMessage)
		}
	}
	return m.updateInputs(msg)
}

func (m Model) handleListKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "e", "enter":
		if e, ok := m.selected(); ok {
			m.editingID = e.ID
			m.name.SetValue(e.Name)
			m.name.CursorEnd()
			m.message.SetValue(e.Message)
			return m, m.setFocus(focusName)
		}
	case "d", "delete":
		if e, ok := m.selected(); ok {
			m.pendingDelete = &e
		}
	case "r":
		return m, m.startFetch()
	case "n", "a":
		return m, m.setFocus(focusName)
	}
	return m, nil
}

// submit validates locally; an incomplete form never reaches the API.
func (m Model) submit() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.name.Value())
	message := strings.TrimSpace(m.message.Value())
	if name == "" || message == "" {
		m.alert = alertMissingFields
		return m, nil
	}
	id := m.editingID
	api, timeout, log := m.api, m.timeout, m.log
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var err error
		if id != 0 {
			log.Debug().Int64("id", id).Msg("updating entry")
			_, err = api.Update(ctx, id, name, message)
		} else {
			log.Debug().Msg("creating entry")
			_, err = api.Create(ctx, name, message)
		}
		return savedMsg{err: err}
	}
}

func (m *Model) startFetch() tea.Cmd {
	m.fetchSeq++
	m.loading = true
	return m.fetchCmd(m.fetchSeq)
}

func (m Model) fetchCmd(seq int) tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		list, err := api.List(ctx)
		return entriesMsg{seq: seq, entries: list, err: err}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	api, timeout, log := m.api, m.timeout, m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Debug().Int64("id", id).Msg("deleting entry")
		return deletedMsg{err: api.Delete(ctx, id)}
	}
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusMessage:
		m.message, cmd = m.message.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.name.Blur()
	m.message.Blur()
	switch f {
	case focusName:
		return m.name.Focus()
	case focusMessage:
		return m.message.Focus()
	}
	return nil
}

func (m *Model) resetForm() {
	m.editingID = 0
	m.name.SetValue("")
	m.message.SetValue("")
	m.setFocus(focusName)
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (client.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return client.Entry{}, false
	}
	return m.entries[m.cursor], true
}
