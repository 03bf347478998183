package tui

import (
	"fmt"
	"strings"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("My Profile & Guestbook"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Leave a message in my guestbook!"))
	b.WriteString("\n\n")

	b.WriteString(m.formView())
	b.WriteString("\n")

	if m.alert != "" {
		b.WriteString(alertStyle.Render("! " + m.alert))
		b.WriteString("\n")
	}
	if m.pendingDelete != nil {
		b.WriteString(confirmStyle.Render(fmt.Sprintf(
			"Are you sure you want to delete this entry? (%s) y/n", m.pendingDelete.Name)))
		b.WriteString("\n")
	}

	b.WriteString(m.entriesView())
	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) formView() string {
	title := "Sign the Guestbook"
	action := "ctrl+s sign guestbook"
	if m.editingID != 0 {
		title = "Edit Entry"
		action = "ctrl+s update entry • esc cancel"
	}
	inner := sectionStyle.Render(title) + "\n" +
		m.name.View() + "\n" +
		m.message.View() + "\n" +
		helpStyle.Render(action)

	style := panelStyle
	if m.focus != focusList {
		style = focusedPanelStyle
	}
	return style.Render(inner)
}

func (m Model) entriesView() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Guestbook Entries"))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(mutedStyle.Render("Loading entries..."))
	case len(m.entries) == 0:
		b.WriteString(mutedStyle.Render("No entries yet. Be the first to sign!"))
	default:
		for i, e := range m.entries {
			header := nameStyle.Render(e.Name) + "  " + mutedStyle.Render(e.CreatedAt.Local().Format("Jan 2, 2006"))
			prefix := "  "
			if m.focus == focusList && i == m.cursor {
				prefix = selectedStyle.Render(">") + " "
			}
			b.WriteString(prefix + header + "\n")
			for _, line := range strings.Split(e.Message, "\n") {
				b.WriteString("    " + line + "\n")
			}
		}
	}

	style := panelStyle
	if m.focus == focusList {
		style = focusedPanelStyle
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) helpView() string {
	if m.focus == focusList {
		return helpStyle.Render("↑/↓ select • e edit • d delete • r refresh • tab form • q quit")
	}
	return helpStyle.Render("tab next field • esc entries • ctrl+c quit")
}
