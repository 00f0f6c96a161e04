package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"placegallery/backend/models"
)

type formKind int

const (
	formNone formKind = iota
	formProfile
	formAvatar
	formPlace
)

// form is the transient field state of an open popup.
type form struct {
	kind   formKind
	inputs []textinput.Model
	focus  int
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 40
	in.SetValue(value)
	return in
}

func newForm(kind formKind, user models.User) form {
	f := form{kind: kind}
	switch kind {
	case formProfile:
		f.inputs = []textinput.Model{
			newInput("Name", user.Name, 40),
			newInput("About", user.About, 200),
		}
	case formAvatar:
		f.inputs = []textinput.Model{newInput("Avatar link", "", 2048)}
	case formPlace:
		f.inputs = []textinput.Model{
			newInput("Place name", "", 30),
			newInput("Image link", "", 2048),
		}
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) complete() bool {
	for i := range f.inputs {
		if f.value(i) == "" {
			return false
		}
	}
	return true
}

func (f *form) move(delta int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f form) title() string {
	switch f.kind {
	case formProfile:
		return "Edit profile"
	case formAvatar:
		return "Update avatar"
	case formPlace:
		return "New place"
	}
	return ""
}

func (f form) button(pending bool) string {
	if f.kind == formPlace {
		if pending {
			return "Creating..."
		}
		return "Create"
	}
	if pending {
		return "Saving..."
	}
	return "Save"
}
