package dataset_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/csvdash/pkg/dataset"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func TestListFiles(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		files map[string]string
		dirs  []string
		want  []string
	}{
		"only csv": {
			files: map[string]string{
				"sales.csv": "date,amount\n2024-01-01,100\n",
				"costs.csv": "date,amount\n",
			},
			want: []string{"costs.csv", "sales.csv"},
		},
		"mixed extensions": {
			files: map[string]string{
				"a.csv":     "x\n",
				"b.txt":     "x\n",
				"c.CSV":     "x\n",
				"d.csv.bak": "x\n",
				"README":    "x\n",
			},
			want: []string{"a.csv", "c.CSV"},
		},
		"directories are skipped": {
			files: map[string]string{
				"a.csv": "x\n",
			},
			dirs: []string{"nested.csv"},
			want: []string{"a.csv"},
		},
		"empty": {
			want: []string{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFiles(t, dir, tc.files)

			for _, d := range tc.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0o750))
			}

			got, err := dataset.ListFiles(dir)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestListFilesMissingDir(t *testing.T) {
	t.Parallel()

	got, err := dataset.ListFiles(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListFilesUnreadableDir(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permissions are not enforced")
	}

	dir := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(dir, 0o000))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o750) })

	_, err := dataset.ListFiles(dir)
	require.ErrorIs(t, err, dataset.ErrReadDir)
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"benin-malanville.csv":    "GHI\n1\n",
		"sierraleone-bumbuna.csv": "GHI\n2\n",
		"togo-dapaong_qc.csv":     "GHI\n3\n",
		"benin-other.csv":         "GHI\n4\n",
	})

	files, err := dataset.Discover(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)

	assert.Equal(t, "benin-malanville.csv", files[0].Name)
	assert.Equal(t, "Benin", files[0].Group)
	assert.Equal(t, filepath.Join(dir, "benin-malanville.csv"), files[0].Path)
	assert.Equal(t, int64(6), files[0].Size)

	byGroup := dataset.FilesByGroup(files)
	assert.Len(t, byGroup["Benin"], 2)
	assert.Len(t, byGroup["Sierraleone"], 1)
	assert.Len(t, byGroup["Togo"], 1)

	assert.Equal(t, []string{"Benin", "Sierraleone", "Togo"}, dataset.Groups(files))
}

func TestGroupOf(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"benin-malanville.csv": "Benin",
		"TOGO_dapaong.csv":     "Togo",
		"sales.csv":            "Sales",
		"2024-report.csv":      "2024-report.csv",
		"/data/kenya.csv":      "Kenya",
	}

	for in, want := range tcs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, want, dataset.GroupOf(in))
		})
	}
}
