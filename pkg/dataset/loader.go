package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Loader discovers and loads CSV files from a single directory.
type Loader struct {
	dir     string
	opts    Options
	workers int
}

type LoaderOpt func(*Loader)

// WithOptions sets the parse options used by [Loader.Load].
func WithOptions(opts Options) LoaderOpt {
	return func(l *Loader) {
		l.opts = opts
	}
}

// WithWorkers sets how many files [Loader.LoadGroups] reads concurrently.
func WithWorkers(n int) LoaderOpt {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

func NewLoader(dir string, opts ...LoaderOpt) *Loader {
	l := &Loader{
		dir:     dir,
		opts:    DefaultOptions(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Dir returns the data directory.
func (l *Loader) Dir() string {
	return l.dir
}

// List returns the names of the CSV files in the data directory.
func (l *Loader) List() ([]string, error) {
	return ListFiles(l.dir)
}

// Discover returns the CSV files in the data directory.
func (l *Loader) Discover() ([]File, error) {
	return Discover(l.dir)
}

// Load parses the named file. The name must be one of the names returned by
// [Loader.List]; anything else, including paths, fails with
// [ErrFileNotFound].
func (l *Loader) Load(name string) (*Table, error) {
	f, err := l.lookup(name)
	if err != nil {
		return nil, err
	}

	return l.loadFile(f)
}

func (l *Loader) lookup(name string) (File, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return File{}, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}

	files, err := l.Discover()
	if err != nil {
		return File{}, err
	}

	i := slices.IndexFunc(files, func(f File) bool { return f.Name == name })
	if i < 0 {
		return File{}, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}

	return files[i], nil
}

func (l *Loader) loadFile(f File) (*Table, error) {
	if l.opts.MaxSize > 0 && f.Size > l.opts.MaxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, f.Name, f.Size, l.opts.MaxSize)
	}

	slog.Debug("loading file",
		slog.String("file", f.Name),
		slog.Int64("size", f.Size),
	)

	r, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer r.Close()

	t, err := Parse(r, l.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	t.Source = f.Name

	slog.Debug("loaded file",
		slog.String("file", f.Name),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns)),
	)

	return t, nil
}

// LoadGroups loads every file that belongs to one of groups and concatenates
// them in listing order. Each row is annotated with [SourceColumn] and
// [CountryColumn]. Files that fail to load are skipped; their errors are
// returned only when no file could be loaded.
func (l *Loader) LoadGroups(ctx context.Context, groups ...string) (*Table, error) {
	files, err := l.Discover()
	if err != nil {
		return nil, err
	}

	selected := []File{}
	for _, f := range files {
		if slices.Contains(groups, f.Group) {
			selected = append(selected, f)
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no files for groups %v", ErrFileNotFound, groups)
	}

	tables := make([]*Table, len(selected))

	var (
		mu   sync.Mutex
		merr error
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.workers)

	for i, f := range selected {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			t, err := l.loadFile(f)
			if err != nil {
				slog.Warn("skipping file", slog.String("file", f.Name), slog.Any("err", err))

				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()

				return nil
			}

			if t.Empty() {
				slog.Debug("skipping file without rows", slog.String("file", f.Name))

				return nil
			}

			t.Set(SourceColumn, f.Name)
			t.Set(CountryColumn, f.Group)
			tables[i] = t

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	out := Concat(tables...)
	if out.Source == "" {
		if merr != nil {
			return nil, merr
		}

		return nil, fmt.Errorf("%w: no rows for groups %v", ErrEmptyFile, groups)
	}

	return out, nil
}
