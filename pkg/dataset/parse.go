package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultMaxSize is the default limit on the size of a loaded file.
const DefaultMaxSize int64 = 64 << 20 // 64Mi.

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options control how CSV input is parsed.
type Options struct {
	// Comma is the field delimiter.
	Comma rune
	// Comment, if not 0, marks lines to skip.
	Comment rune
	// MaxSize is the largest input accepted, in bytes. Zero means no limit.
	MaxSize int64
}

// DefaultOptions returns comma-delimited parsing with [DefaultMaxSize].
func DefaultOptions() Options {
	return Options{
		Comma:   ',',
		MaxSize: DefaultMaxSize,
	}
}

// Validate checks that the delimiters are usable.
func (o Options) Validate() error {
	if !validDelim(o.Comma) {
		return fmt.Errorf("%w: delimiter %q", ErrInvalidOptions, o.Comma)
	}

	if o.Comment != 0 && (!validDelim(o.Comment) || o.Comment == o.Comma) {
		return fmt.Errorf("%w: comment %q", ErrInvalidOptions, o.Comment)
	}

	if o.MaxSize < 0 {
		return fmt.Errorf("%w: negative max size", ErrInvalidOptions)
	}

	return nil
}

func validDelim(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// Parse reads CSV from r. The first record is the header; column names are
// trimmed of surrounding whitespace. Every record must have as many fields as
// the header.
func Parse(r io.Reader, opts Options) (*Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.MaxSize > 0 {
		r = &limitReader{r: r, n: opts.MaxSize}
	}

	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = opts.Comma
	cr.Comment = opts.Comment

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, wrapReadErr(err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	t := &Table{
		Columns: cols,
		Rows:    [][]string{},
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapReadErr(err)
		}

		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}

func wrapReadErr(err error) error {
	if errors.Is(err, ErrTooLarge) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrParse, err)
}

// limitReader fails with [ErrTooLarge] once more than n bytes are read.
type limitReader struct {
	r io.Reader
	n int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.n < 0 {
		return 0, ErrTooLarge
	}

	// Allow one byte past the limit so that input of exactly n bytes
	// still reaches EOF.
	if int64(len(p)) > l.n+1 {
		p = p[:l.n+1]
	}

	n, err := l.r.Read(p)
	l.n -= int64(n)

	if l.n < 0 {
		return 0, ErrTooLarge
	}

	return n, err
}
