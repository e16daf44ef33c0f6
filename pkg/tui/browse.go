package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MacroPower/csvdash/pkg/dataset"
)

const maxColumnWidth = 24

// Loader discovers and loads CSV files.
type Loader interface {
	Dir() string
	Discover() ([]dataset.File, error)
	Load(name string) (*dataset.Table, error)
}

type browseState int

const (
	stateDiscovering browseState = iota
	statePicking
	stateLoading
	stateViewing
)

type (
	// Sent when discovery finishes.
	filesMsg struct {
		err   error
		files []dataset.File
	}

	// Sent when a file finishes loading.
	tableMsg struct {
		err   error
		table *dataset.Table
		name  string
	}
)

type fileItem struct {
	file dataset.File
}

func (i fileItem) Title() string       { return i.file.Name }
func (i fileItem) FilterValue() string { return i.file.Name }

func (i fileItem) Description() string {
	return fmt.Sprintf("%s, %d bytes", i.file.Group, i.file.Size)
}

// BrowseModel lets the user pick a CSV file and view its contents.
type BrowseModel struct {
	loader  Loader
	err     error
	loaded  *dataset.Table
	list    list.Model
	table   table.Model
	spinner spinner.Model
	name    string
	width   int
	height  int
	state   browseState
	noFiles bool
}

// NewBrowseModel creates a [BrowseModel] over the files found by loader.
func NewBrowseModel(loader Loader) *BrowseModel {
	s := spinner.New()
	s.Style = spinnerStyle

	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.Title = "CSV files in " + loader.Dir()
	l.SetShowHelp(true)

	m := &BrowseModel{
		loader:  loader,
		list:    l,
		spinner: s,
		width:   80,
		height:  24,
	}
	m.resizeList()

	return m
}

func (m *BrowseModel) Init() tea.Cmd {
	m.state = stateDiscovering

	return tea.Batch(m.spinner.Tick, m.discover)
}

func (m *BrowseModel) discover() tea.Msg {
	files, err := m.loader.Discover()

	return filesMsg{files: files, err: err}
}

func (m *BrowseModel) load(name string) tea.Cmd {
	return func() tea.Msg {
		t, err := m.loader.Load(name)

		return tableMsg{name: name, table: t, err: err}
	}
}

// Table returns the table being viewed, or nil.
func (m *BrowseModel) Table() *dataset.Table {
	return m.loaded
}

//nolint:ireturn // Third-party.
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeList()

		if m.state == stateViewing {
			m.table.SetWidth(msg.Width)
			m.table.SetHeight(max(1, msg.Height-4))
		}

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case filesMsg:
		return m, m.setFiles(msg)

	case tableMsg:
		m.state = statePicking

		if msg.err != nil {
			m.err = fmt.Errorf("load %s: %w", msg.name, msg.err)
			m.resizeList()

			return m, nil
		}

		m.err = nil
		m.resizeList()
		m.showTable(msg.name, msg.table)

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m.forward(msg)
}

func (m *BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateDiscovering, stateLoading:
		return m, nil

	case stateViewing:
		switch {
		case keyQuits(msg):
			return m, tea.Quit
		case msg.String() == "esc":
			m.state = statePicking
			m.loaded = nil

			return m, nil
		}

	case statePicking:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case keyQuits(msg), msg.String() == "esc" && m.list.FilterState() == list.Unfiltered:
			return m, tea.Quit
		case msg.String() == "enter":
			item, ok := m.list.SelectedItem().(fileItem)
			if !ok {
				return m, nil
			}

			m.state = stateLoading
			m.err = nil
			m.resizeList()

			return m, tea.Batch(m.spinner.Tick, m.load(item.file.Name))
		}
	}

	return m.forward(msg)
}

// forward passes msg to the component on screen.
func (m *BrowseModel) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case statePicking:
		m.list, cmd = m.list.Update(msg)
	case stateViewing:
		m.table, cmd = m.table.Update(msg)
	case stateDiscovering, stateLoading:
	}

	return m, cmd
}

// resizeList fits the list below the error message, if any.
func (m *BrowseModel) resizeList() {
	h := m.height - 2
	if m.err != nil {
		h -= lipgloss.Height(getErrorMessage(m.err, m.width))
	}

	m.list.SetSize(m.width, max(0, h))
}

func (m *BrowseModel) setFiles(msg filesMsg) tea.Cmd {
	m.state = statePicking

	if msg.err != nil {
		m.err = msg.err
		m.resizeList()

		return nil
	}

	m.noFiles = len(msg.files) == 0

	items := make([]list.Item, 0, len(msg.files))
	for _, f := range msg.files {
		items = append(items, fileItem{file: f})
	}

	return m.list.SetItems(items)
}

func (m *BrowseModel) showTable(name string, t *dataset.Table) {
	m.state = stateViewing
	m.name = name
	m.loaded = t

	cols := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		w := len(c)
		for _, r := range t.Rows {
			w = max(w, len(r[i]))
		}

		cols[i] = table.Column{Title: c, Width: min(w, maxColumnWidth)}
	}

	rows := make([]table.Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = table.Row(r)
	}

	m.table = table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithWidth(m.width),
		table.WithHeight(max(1, m.height-4)),
	)
}

func (m *BrowseModel) View() string {
	switch m.state {
	case stateDiscovering:
		return m.spinner.View() + " Discovering files\n"

	case stateLoading:
		item, _ := m.list.SelectedItem().(fileItem)

		return m.spinner.View() + " Loading " + item.file.Name + "\n"

	case stateViewing:
		return m.viewTable()

	case statePicking:
		return m.viewPicker()
	}

	return ""
}

func (m *BrowseModel) viewPicker() string {
	b := &strings.Builder{}

	if m.err != nil {
		b.WriteString(getErrorMessage(m.err, m.width) + "\n")
	}

	if m.noFiles {
		b.WriteString(warnStyle.Render("No CSV files found in "+m.loader.Dir()) + "\n")
		b.WriteString(helpStyle.Render("q quit") + "\n")

		return b.String()
	}

	b.WriteString(m.list.View())

	return b.String()
}

func (m *BrowseModel) viewTable() string {
	t := m.loaded
	numeric := t.NumericColumns()

	header := fmt.Sprintf("%s: %d rows, %d columns, %d numeric", m.name, t.Len(), len(t.Columns), len(numeric))
	if len(numeric) > 0 {
		header += " (" + strings.Join(numeric, ", ") + ")"
	}

	return headerStyle.Render(header) + "\n" +
		m.table.View() + "\n" +
		helpStyle.Render("↑/↓ scroll • esc back • q quit") + "\n"
}
