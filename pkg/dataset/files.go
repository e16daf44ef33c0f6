package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Extension is the file extension of discoverable files, compared
// case-insensitively.
const Extension = ".csv"

var groupPrefix = regexp.MustCompile(`^[A-Za-z]+`)

// File is a CSV file found in a data directory.
type File struct {
	Name  string `json:"name"`
	Group string `json:"group"`
	Path  string `json:"-"`
	Size  int64  `json:"size"`
}

// ListFiles returns the names of the CSV files directly under dir, in the
// order they are found. A missing directory yields an empty listing.
func ListFiles(dir string) ([]string, error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}

	return names, nil
}

// Discover is like [ListFiles], but returns a [File] for each entry.
func Discover(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDir, err)
	}

	files := []File{}

	for _, e := range entries {
		if !IsCSV(e.Name()) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, File{
			Name:  e.Name(),
			Group: GroupOf(e.Name()),
			Path:  filepath.Join(dir, e.Name()),
			Size:  info.Size(),
		})
	}

	return files, nil
}

// IsCSV reports whether name has the CSV extension.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

// GroupOf infers a group (typically a country) from a file name by taking
// the leading run of ASCII letters and title-casing it, so
// "benin-malanville.csv" belongs to "Benin". Names without a leading letter
// are their own group.
func GroupOf(name string) string {
	prefix := groupPrefix.FindString(filepath.Base(name))
	if prefix == "" {
		return filepath.Base(name)
	}

	return cases.Title(language.Und).String(prefix)
}

// FilesByGroup indexes files by their group, keeping the listing order
// within each group.
func FilesByGroup(files []File) map[string][]File {
	m := make(map[string][]File)
	for _, f := range files {
		m[f.Group] = append(m[f.Group], f)
	}

	return m
}

// Groups returns the sorted, distinct groups of files.
func Groups(files []File) []string {
	groups := []string{}
	for _, f := range files {
		if !slices.Contains(groups, f.Group) {
			groups = append(groups, f.Group)
		}
	}

	slices.Sort(groups)

	return groups
}
