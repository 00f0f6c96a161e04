package ui

import "github.com/charmbracelet/lipgloss"

const cardWidth = 26

var (
	accent = lipgloss.Color("#7D56F4")
	muted  = lipgloss.Color("#888888")
	danger = lipgloss.Color("#E5484D")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(muted)

	nameStyle  = lipgloss.NewStyle().Bold(true)
	aboutStyle = lipgloss.NewStyle().Foreground(muted)
	linkStyle  = lipgloss.NewStyle().Foreground(muted).Italic(true)

	cardStyle = lipgloss.NewStyle().
			Width(cardWidth).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted)

	selectedCardStyle = cardStyle.BorderForeground(accent)

	likedStyle  = lipgloss.NewStyle().Foreground(danger)
	footerStyle = lipgloss.NewStyle().Foreground(muted).MarginTop(1)
	hintStyle   = lipgloss.NewStyle().Foreground(accent)

	popupStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent)

	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent)
	disabledButtonStyle = buttonStyle.Background(muted)
)
