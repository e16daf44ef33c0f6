package tui_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MacroPower/csvdash/pkg/dataset"
	"github.com/MacroPower/csvdash/pkg/tui"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)

	os.Exit(m.Run())
}

func newLoader(t *testing.T, files map[string]string) *dataset.Loader {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	return dataset.NewLoader(dir)
}

// waitFor blocks until every string in want has been written. Each call
// consumes the output read so far, and the renderer skips unchanged lines,
// so strings from one frame must be waited for together.
func waitFor(t *testing.T, tm *teatest.TestModel, want ...string) {
	t.Helper()

	teatest.WaitFor(
		t, tm.Output(),
		func(bts []byte) bool {
			for _, s := range want {
				if !bytes.Contains(bts, []byte(s)) {
					return false
				}
			}

			return true
		},
		teatest.WithDuration(5*time.Second),
	)
}

func finalModel(t *testing.T, tm *teatest.TestModel) *tui.BrowseModel {
	t.Helper()

	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final, ok := tm.FinalModel(t).(*tui.BrowseModel)
	require.True(t, ok)

	return final
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyQ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
	keyCtrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func TestBrowseModel_ViewFile(t *testing.T) {
	t.Parallel()

	m := tui.NewBrowseModel(newLoader(t, map[string]string{
		"sales.csv": "date,amount\n2024-01-01,100\n",
	}))
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(100, 30),
	)

	waitFor(t, tm, "sales.csv")

	tm.Send(keyEnter)
	waitFor(t, tm, "2024-01-01")

	tm.Send(keyQ)

	final := finalModel(t, tm)
	require.NotNil(t, final.Table())
	assert.Contains(t, final.View(), "sales.csv: 1 rows, 2 columns, 1 numeric (amount)")
	assert.Contains(t, final.View(), "2024-01-01")
}

func TestBrowseModel_BackToPicker(t *testing.T) {
	t.Parallel()

	m := tui.NewBrowseModel(newLoader(t, map[string]string{
		"sales.csv": "date,amount\n2024-01-01,100\n",
	}))
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(100, 30),
	)

	waitFor(t, tm, "sales.csv")

	tm.Send(keyEnter)
	waitFor(t, tm, "2024-01-01")

	tm.Send(keyEsc)
	tm.Send(keyQ)

	final := finalModel(t, tm)
	assert.Nil(t, final.Table())
	assert.Contains(t, final.View(), "CSV files in")
}

func TestBrowseModel_QuitFromTable(t *testing.T) {
	t.Parallel()

	m := tui.NewBrowseModel(newLoader(t, map[string]string{
		"solar.csv": "region,GHI\nRegion-1,100\nRegion-2,200\n",
	}))
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(100, 30),
	)

	waitFor(t, tm, "solar.csv")

	tm.Send(keyEnter)
	waitFor(t, tm, "solar.csv: 2 rows")

	tm.Send(keyQ)

	final := finalModel(t, tm)
	require.NotNil(t, final.Table())
	assert.Equal(t, []string{"region", "GHI"}, final.Table().Columns)
}

func TestBrowseModel_LoadError(t *testing.T) {
	t.Parallel()

	m := tui.NewBrowseModel(newLoader(t, map[string]string{
		"broken.csv": "a,b\n1,2,3\n",
	}))
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(100, 30),
	)

	waitFor(t, tm, "broken.csv")

	tm.Send(keyEnter)
	waitFor(t, tm, "load broken.csv")

	tm.Send(keyCtrlC)

	final := finalModel(t, tm)
	assert.Nil(t, final.Table())
	assert.Contains(t, final.View(), "load broken.csv")
}

func TestBrowseModel_ErrorLayout(t *testing.T) {
	t.Parallel()

	const width, height = 60, 20

	files := []dataset.File{
		{Name: "benin-a.csv", Group: "Benin"},
		{Name: "benin-b.csv", Group: "Benin"},
		{Name: "togo-a.csv", Group: "Togo"},
	}

	m := tui.NewBrowseModel(dataset.NewLoader(t.TempDir()))
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	m.Update(tui.FilesMsg(files, nil))

	noErr := lipgloss.Height(m.View())
	assert.LessOrEqual(t, noErr, height)

	m.Update(tui.TableMsg("benin-a.csv", nil, errors.New("parse csv: wrong number of fields")))
	view := m.View()
	assert.Contains(t, view, "load benin-a.csv")
	assert.Contains(t, view, "CSV files in")
	assert.Equal(t, noErr, lipgloss.Height(view))

	// The picker stays usable after the error.
	m.Update(keyEnter)
	assert.True(t, m.Loading())
	assert.NotContains(t, m.View(), "load benin-a.csv")
}

func TestBrowseModel_NoFiles(t *testing.T) {
	t.Parallel()

	m := tui.NewBrowseModel(dataset.NewLoader(filepath.Join(t.TempDir(), "missing")))
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(100, 30),
	)

	waitFor(t, tm, "No CSV files found")

	tm.Send(keyQ)
	assert.Contains(t, finalModel(t, tm).View(), "No CSV files found")
}

type failingLoader struct {
	*dataset.Loader
}

func (failingLoader) Discover() ([]dataset.File, error) {
	return nil, errors.New("permission denied")
}

func TestBrowseModel_DiscoverError(t *testing.T) {
	t.Parallel()

	m := tui.NewBrowseModel(failingLoader{Loader: dataset.NewLoader(t.TempDir())})
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(100, 30),
	)

	waitFor(t, tm, "permission denied")

	tm.Send(keyEsc)
	assert.Contains(t, finalModel(t, tm).View(), "permission denied")
}
