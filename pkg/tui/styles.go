package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Margin(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(0, 1)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(0, 1)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Margin(1, 2)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	errorMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).SetString("✗")
)

func keyQuits(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+c", "q":
		return true
	}

	return false
}

func getErrorMessage(err error, width int) string {
	errMsg := fmt.Sprintf("%s %v", errorMark, err)
	errMsg = strings.Trim(errMsg, "\r\n")

	return errStyle.Width(max(0, width-2)).Render(errMsg)
}
