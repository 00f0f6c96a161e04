package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"placegallery/backend/models"
	"placegallery/client/shell"
)

func (m Model) View() string {
	st := m.shell.State()

	page := lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.profile(st),
		m.main(st),
		m.footer(),
	)

	popup := m.popup(st)
	if popup == "" {
		return page
	}
	if m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popup)
	}
	return popup
}

func (m Model) header() string {
	title := "Mesto Russia"
	if m.live {
		title += "  ● live"
	}
	return headerStyle.Width(m.width).Render(title)
}

func (m Model) profile(st shell.State) string {
	if !st.Loaded {
		return aboutStyle.Render("Loading profile...")
	}
	u := st.CurrentUser
	return lipgloss.JoinVertical(lipgloss.Left,
		nameStyle.Render(u.Name),
		aboutStyle.Render(u.About),
		linkStyle.Render("avatar: "+u.Avatar),
		"",
	)
}

func (m Model) main(st shell.State) string {
	if st.Loaded && len(st.Cards) == 0 {
		return aboutStyle.Render("No places yet. Press n to add one.")
	}

	cols := m.columns()
	var rows []string
	for start := 0; start < len(st.Cards); start += cols {
		end := min(start+cols, len(st.Cards))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, m.card(st.Cards[i], st.CurrentUser.ID, i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) card(c models.Card, me string, selected bool) string {
	heart := "♡"
	if c.LikedBy(me) {
		heart = likedStyle.Render("♥")
	}
	meta := fmt.Sprintf("%s %d", heart, len(c.Likes))
	if c.Owner.ID == me {
		meta += "  🗑"
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		nameStyle.Render(truncate(c.Name, cardWidth-2)),
		linkStyle.Render(truncate(c.Link, cardWidth-2)),
		meta,
	))
}

func (m Model) footer() string {
	hints := "←→↑↓ move · space like · enter view · d delete · e profile · a avatar · n new · r reload · q quit"
	lines := []string{hintStyle.Render(hints)}
	if m.remoteChanges > 0 {
		lines = append(lines, hintStyle.Render(fmt.Sprintf("%d change(s) on the server, press r to reload", m.remoteChanges)))
	}
	lines = append(lines, fmt.Sprintf("© %d Mesto Russia", time.Now().Year()))
	return footerStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) popup(st shell.State) string {
	switch {
	case m.form.kind != formNone:
		return m.formPopup(st.Pending)
	case st.ConfirmDeleteOpen:
		return popupStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Are you sure?"),
			buttonStyle.Render("Yes (y)")+"  "+aboutStyle.Render("esc to cancel"),
		))
	case st.ImagePreviewOpen && st.SelectedCard != nil:
		return popupStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(st.SelectedCard.Name),
			linkStyle.Render(st.SelectedCard.Link),
			aboutStyle.Render("by "+st.SelectedCard.Owner.Name),
		))
	}
	return ""
}

func (m Model) formPopup(pending bool) string {
	lines := []string{titleStyle.Render(m.form.title())}
	for _, in := range m.form.inputs {
		lines = append(lines, in.View())
	}
	btn := buttonStyle
	if pending {
		btn = disabledButtonStyle
	}
	lines = append(lines, "", btn.Render(m.form.button(pending))+"  "+aboutStyle.Render("esc to close"))
	return popupStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
