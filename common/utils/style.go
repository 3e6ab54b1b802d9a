package utils

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.ANSI256)
}

var (
	RedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc0000"))
	OrangeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff7c28"))
	GreenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06cc00"))
	LightBlueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3cc5ff"))
	GrayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#adadad"))

	// TitleStyle is applied to the title of a notification, after its severity color.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// CellStyle frames the text rendered into a notebook cell when it is echoed to the terminal.
	CellStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#adadad")).
			PaddingLeft(1)

	// NotificationStyles is indexed by notification type: error, warning, info, success.
	NotificationStyles = []lipgloss.Style{RedStyle, OrangeStyle, LightBlueStyle, GreenStyle}
)

// NotificationStyle returns the style of the given notification type, or GrayStyle if the type is unknown.
func NotificationStyle(notificationType int) lipgloss.Style {
	if notificationType < 0 || notificationType >= len(NotificationStyles) {
		return GrayStyle
	}
	return NotificationStyles[notificationType]
}
