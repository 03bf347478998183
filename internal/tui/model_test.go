package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"guestbook/internal/client"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type call struct {
	method  string
	id      int64
	name    string
	message string
}

type fakeAPI struct {
	entries []client.Entry
	listErr error
	saveErr error
	delErr  error
	calls   []call
}

func (f *fakeAPI) List(context.Context) ([]client.Entry, error) {
	f.calls = append(f.calls, call{method: "List"})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]client.Entry(nil), f.entries...), nil
}

func (f *fakeAPI) Create(_ context.Context, name, message string) (client.Entry, error) {
	f.calls = append(f.calls, call{method: "Create", name: name, message: message})
	if f.saveErr != nil {
		return client.Entry{}, f.saveErr
	}
	e := client.Entry{ID: int64(len(f.entries) + 1), Name: name, Message: message, CreatedAt: time.Now().UTC()}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeAPI) Update(_ context.Context, id int64, name, message string) (client.Entry, error) {
	f.calls = append(f.calls, call{method: "Update", id: id, name: name, message: message})
	if f.saveErr != nil {
		return client.Entry{}, f.saveErr
	}
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Name, f.entries[i].Message = name, message
			return f.entries[i], nil
		}
	}
	return client.Entry{}, &client.APIError{Status: 404, Message: "not found"}
}

func (f *fakeAPI) Delete(_ context.Context, id int64) error {
	f.calls = append(f.calls, call{method: "Delete", id: id})
	if f.delErr != nil {
		return f.delErr
	}
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404}
}

func (f *fakeAPI) methods() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.method)
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step applies msg and then runs returned commands until none is left,
// feeding each resulting message back into the model.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		out := cmd()
		if out == nil {
			return m
		}
		if _, ok := out.(entriesMsg); !ok {
			if _, ok := out.(savedMsg); !ok {
				if _, ok := out.(deletedMsg); !ok {
					// cursor blink and similar input messages are not part of the flow
					return m
				}
			}
		}
		next, cmd = m.Update(out)
		m = next.(Model)
	}
	return m
}

func started(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := New(api, zerolog.Nop(), time.Second)
	require.Equal(t, StateLoading, m.State())
	next, _ := m.Update(m.Init()())
	return next.(Model)
}

func TestModel_Mount_Fetches(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{entries: []client.Entry{{ID: 1, Name: "Ada", Message: "Hello"}}}

	m := started(t, api)

	req.Equal(StateViewing, m.State())
	req.Len(m.entries, 1)
	req.Equal([]string{"List"}, api.methods())
	req.Contains(m.View(), "Ada")
}

func TestModel_Empty_List(t *testing.T) {
	req := require.New(t)
	m := started(t, &fakeAPI{})

	req.Contains(m.View(), "No entries yet. Be the first to sign!")
}

func TestModel_Submit_Incomplete_Form(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{}
	m := started(t, api)
	m.name.SetValue("Ada")

	next, cmd := m.Update(key("ctrl+s"))
	m = next.(Model)

	req.Nil(cmd)
	req.Equal(alertMissingFields, m.alert)
	req.Equal([]string{"List"}, api.methods())
	req.Contains(m.View(), alertMissingFields)
}

func TestModel_Create(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{}
	m := started(t, api)
	m.name.SetValue("Ada")
	m.message.SetValue("Hello")

	m = step(t, m, key("ctrl+s"))

	req.Equal([]string{"List", "Create", "List"}, api.methods())
	req.Equal(call{method: "Create", name: "Ada", message: "Hello"}, api.calls[1])
	req.Equal(StateViewing, m.State())
	req.Empty(m.name.Value())
	req.Empty(m.message.Value())
	req.Len(m.entries, 1)
}

func TestModel_Edit_And_Update(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{entries: []client.Entry{
		{ID: 1, Name: "Ada", Message: "Hello"},
		{ID: 2, Name: "Grace", Message: "Hi"},
	}}
	m := started(t, api)

	m = step(t, m, key("esc"))
	m = step(t, m, key("j"))
	m = step(t, m, key("e"))

	req.Equal(StateEditing, m.State())
	req.Equal(int64(2), m.editingID)
	req.Equal("Grace", m.name.Value())
	req.Equal("Hi", m.message.Value())
	req.Equal([]string{"List"}, api.methods())
	req.Contains(m.View(), "Edit Entry")

	m.message.SetValue("Hi again")
	m = step(t, m, key("ctrl+s"))

	req.Equal([]string{"List", "Update", "List"}, api.methods())
	req.Equal(call{method: "Update", id: 2, name: "Grace", message: "Hi again"}, api.calls[1])
	req.Equal(StateViewing, m.State())
	req.Zero(m.editingID)
	req.Equal("Hi again", m.entries[1].Message)
}

func TestModel_Edit_Keeps_Long_Fields(t *testing.T) {
	req := require.New(t)
	name := strings.Repeat("n", 200)
	message := strings.Repeat("m", 600)
	api := &fakeAPI{entries: []client.Entry{{ID: 1, Name: name, Message: message}}}
	m := started(t, api)

	m = step(t, m, key("esc"))
	m = step(t, m, key("e"))
	m = step(t, m, key("ctrl+s"))

	req.Equal([]string{"List", "Update", "List"}, api.methods())
	req.Equal(call{method: "Update", id: 1, name: name, message: message}, api.calls[1])
}

func TestModel_Typed_Name_Is_Not_Cut(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{}
	m := started(t, api)

	typed := strings.Repeat("x", 300)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(typed)})
	m = next.(Model)

	req.Equal(typed, m.name.Value())
}

func TestModel_Cancel_Edit(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{entries: []client.Entry{{ID: 1, Name: "Ada", Message: "Hello"}}}
	m := started(t, api)

	m = step(t, m, key("esc"))
	m = step(t, m, key("e"))
	req.Equal(StateEditing, m.State())

	m = step(t, m, key("esc"))

	req.Equal(StateViewing, m.State())
	req.Empty(m.name.Value())
	req.Empty(m.message.Value())
	req.Equal([]string{"List"}, api.methods())
}

func TestModel_Delete_Confirmation(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{entries: []client.Entry{{ID: 1, Name: "Ada", Message: "Hello"}}}
	m := started(t, api)
	m = step(t, m, key("esc"))

	m = step(t, m, key("d"))
	req.NotNil(m.pendingDelete)
	req.Contains(m.View(), "Are you sure you want to delete this entry?")

	m = step(t, m, key("n"))
	req.Nil(m.pendingDelete)
	req.Equal([]string{"List"}, api.methods())

	m = step(t, m, key("d"))
	m = step(t, m, key("y"))

	req.Equal([]string{"List", "Delete", "List"}, api.methods())
	req.Equal(int64(1), api.calls[1].id)
	req.Empty(m.entries)
	req.Equal(StateViewing, m.State())
}

func TestModel_Fetch_Failure(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{entries: []client.Entry{{ID: 1, Name: "Ada", Message: "Hello"}}}
	m := started(t, api)
	req.Len(m.entries, 1)

	api.listErr = client.ErrTransport
	m = step(t, m, key("esc"))
	m = step(t, m, key("r"))

	req.Equal(StateViewing, m.State())
	req.Empty(m.entries)
	req.Equal(alertFetchFailed, m.alert)
}

func TestModel_Save_Failure_Keeps_Form(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{saveErr: errors.New("boom")}
	m := started(t, api)
	m.name.SetValue("Ada")
	m.message.SetValue("Hello")

	m = step(t, m, key("ctrl+s"))

	req.Equal(alertSaveFailed, m.alert)
	req.Equal("Ada", m.name.Value())
	req.Equal("Hello", m.message.Value())
	req.Equal([]string{"List", "Create"}, api.methods())
}

func TestModel_Delete_Failure(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{entries: []client.Entry{{ID: 1, Name: "Ada", Message: "Hello"}}, delErr: errors.New("boom")}
	m := started(t, api)
	m = step(t, m, key("esc"))

	m = step(t, m, key("d"))
	m = step(t, m, key("y"))

	req.Equal(alertDeleteFailed, m.alert)
	req.Len(m.entries, 1)
}

func TestModel_Drops_Stale_Fetch(t *testing.T) {
	req := require.New(t)
	m := started(t, &fakeAPI{})

	m.fetchSeq = 5
	m.loading = true
	next, _ := m.Update(entriesMsg{seq: 4, entries: []client.Entry{{ID: 9, Name: "old"}}})
	m = next.(Model)
	req.True(m.loading)
	req.Empty(m.entries)

	next, _ = m.Update(entriesMsg{seq: 5, entries: []client.Entry{{ID: 10, Name: "new"}}})
	m = next.(Model)
	req.False(m.loading)
	req.Len(m.entries, 1)
	req.Equal("new", m.entries[0].Name)
}
