package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MacroPower/csvdash/pkg/dataset"
)

// FilesMsg builds the message sent when discovery finishes, for testing.
func FilesMsg(files []dataset.File, err error) tea.Msg {
	return filesMsg{files: files, err: err}
}

// TableMsg builds the message sent when a file finishes loading, for testing.
func TableMsg(name string, t *dataset.Table, err error) tea.Msg {
	return tableMsg{name: name, table: t, err: err}
}

// Loading reports whether the model is waiting for a file to load.
func (m *BrowseModel) Loading() bool {
	return m.state == stateLoading
}
