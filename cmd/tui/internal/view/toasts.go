package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/notify"
)

// ToastTickMsg drives re-rendering while toasts are on screen, so expired
// events disappear without waiting for the next key press.
type ToastTickMsg struct{}

func ToastTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return ToastTickMsg{}
	})
}

var toastStyles = map[notify.Severity]lipgloss.Style{
	notify.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Border(lipgloss.RoundedBorder()).Padding(0, 1),
	notify.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Border(lipgloss.RoundedBorder()).Padding(0, 1),
	notify.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Border(lipgloss.RoundedBorder()).Padding(0, 1),
	notify.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Border(lipgloss.RoundedBorder()).Padding(0, 1),
}

var toastPrefixes = map[notify.Severity]string{
	notify.SeveritySuccess: "✓",
	notify.SeverityError:   "✗",
	notify.SeverityWarning: "!",
	notify.SeverityInfo:    "i",
}

// RenderToasts draws the active events in insertion order, oldest first.
func RenderToasts(queue *notify.Queue) string {
	events := queue.Active()
	if len(events) == 0 {
		return ""
	}

	lines := make([]string, len(events))
	for i, e := range events {
		style, ok := toastStyles[e.Severity]
		if !ok {
			style = toastStyles[notify.SeverityInfo]
		}

		lines[i] = style.Render(toastPrefixes[e.Severity] + " " + e.Message)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
