// Package ui renders the gallery in the terminal. It reads shell state and
// turns key presses into shell intents; it keeps nothing but the cursor and
// the fields of the popup being edited.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"placegallery/backend/models"
	"placegallery/client/shell"
)

type remoteEventMsg struct{ event models.Event }

type eventsClosedMsg struct{}

type Model struct {
	shell  *shell.Shell
	events <-chan models.Event

	width  int
	height int
	cursor int
	form   form

	remoteChanges int
	live          bool
}

// New builds the root model. events may be nil when the realtime feed is
// unavailable.
func New(sh *shell.Shell, events <-chan models.Event) Model {
	return Model{shell: sh, events: events, live: events != nil, width: 80}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.shell.Init(), m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return remoteEventMsg{event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.shell.Update(msg) {
		m.syncForm()
		m.clampCursor()
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case remoteEventMsg:
		m.remoteChanges++
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.live = false
		m.events = nil
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		st := m.shell.State()
		switch {
		case m.form.kind != formNone:
			return m.updateForm(msg, st)
		case st.ConfirmDeleteOpen:
			return m.updateConfirm(msg)
		case st.ImagePreviewOpen:
			switch msg.String() {
			case "esc", "enter", "q":
				m.shell.CloseAllPopups()
			}
			return m, nil
		default:
			return m.updateGallery(msg, st)
		}
	}

	if m.form.kind != formNone {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m Model) updateGallery(msg tea.KeyMsg, st shell.State) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.cursor--
	case "right", "l":
		m.cursor++
	case "up", "k":
		m.cursor -= cols
	case "down", "j":
		m.cursor += cols
	case "r":
		m.remoteChanges = 0
		return m, m.shell.LoadInitialData()
	case "e":
		m.shell.OpenEditProfile()
		m.form = newForm(formProfile, st.CurrentUser)
	case "a":
		m.shell.OpenEditAvatar()
		m.form = newForm(formAvatar, st.CurrentUser)
	case "n":
		m.shell.OpenAddPlace()
		m.form = newForm(formPlace, st.CurrentUser)
	case " ", "f":
		if card, ok := m.selected(st); ok {
			return m, m.shell.ToggleLike(card)
		}
	case "enter":
		if card, ok := m.selected(st); ok {
			m.shell.OpenImagePreview(card)
		}
	case "d", "delete":
		if card, ok := m.selected(st); ok && card.Owner.ID == st.CurrentUser.ID {
			m.shell.OpenConfirmDelete(card)
		}
	}
	m.clampCursor()
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		return m, m.shell.ConfirmDelete()
	case "n", "esc", "q":
		m.shell.CloseAllPopups()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg, st shell.State) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.shell.CloseAllPopups()
		m.form = form{}
		return m, nil
	case "tab", "down":
		m.form.move(1)
		return m, nil
	case "shift+tab", "up":
		m.form.move(-1)
		return m, nil
	case "enter":
		if m.form.focus < len(m.form.inputs)-1 {
			m.form.move(1)
			return m, nil
		}
		if st.Pending || !m.form.complete() {
			return m, nil
		}
		return m, m.submit()
	}
	return m, m.form.update(msg)
}

func (m Model) submit() tea.Cmd {
	switch m.form.kind {
	case formProfile:
		return m.shell.UpdateProfile(models.ProfileUpdate{Name: m.form.value(0), About: m.form.value(1)})
	case formAvatar:
		return m.shell.UpdateAvatar(models.AvatarUpdate{Avatar: m.form.value(0)})
	case formPlace:
		return m.shell.AddCard(models.NewCard{Name: m.form.value(0), Link: m.form.value(1)})
	}
	return nil
}

// syncForm drops the form once the shell has closed its popup.
func (m *Model) syncForm() {
	st := m.shell.State()
	open := map[formKind]bool{
		formProfile: st.EditProfileOpen,
		formAvatar:  st.EditAvatarOpen,
		formPlace:   st.AddPlaceOpen,
	}
	if m.form.kind != formNone && !open[m.form.kind] {
		m.form = form{}
	}
}

func (m Model) columns() int {
	cols := m.width / (cardWidth + 4)
	if cols < 1 {
		return 1
	}
	return cols
}

func (m *Model) clampCursor() {
	n := len(m.shell.State().Cards)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected(st shell.State) (models.Card, bool) {
	if m.cursor < 0 || m.cursor >= len(st.Cards) {
		return models.Card{}, false
	}
	return st.Cards[m.cursor], true
}
