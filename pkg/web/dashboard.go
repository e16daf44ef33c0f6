package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/MacroPower/csvdash/internal/version"
	"github.com/MacroPower/csvdash/pkg/config"
	"github.com/MacroPower/csvdash/pkg/dataset"
	"github.com/MacroPower/csvdash/pkg/session"
	"github.com/MacroPower/csvdash/pkg/stats"
)

// rawLimit is the number of rows shown in the raw data view.
const rawLimit = 1000

var funcs = template.FuncMap{
	"id": func(prefix, s string) string {
		return prefix + "-" + strcase.ToKebab(unsafeFilename.ReplaceAllString(s, " "))
	},
	"float": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 2, 64)
	},
}

type dashboard struct {
	Flash   *session.Flash
	Raw     *dataset.Table
	Version string
	DataDir string

	Files    []dataset.File
	Groups   []string
	Selected map[string]bool
	File     string

	GenerateCountries string
	GenerateRows      int
	GenerateRegions   int
	MinGenerateRows   int
	MaxGenerateRows   int
	MaxRegions        int

	Origin    string
	Rows      int
	Columns   int
	Numeric   []string
	Variable  string
	GroupCol  string
	ColorCol  string
	Error     string
	Top       []stats.Group
	TopN      int
	MinTopN   int
	MaxTopN   int
	ChartArgs template.URL

	NoFiles bool
	Loaded  bool
	ShowRaw bool
	RawMore bool
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var sess session.Session

	err := s.store.Update(sessionID(r.Context()), func(cur *session.Session) error {
		if q.Has("view") {
			cur.Variable = q.Get("variable")
			cur.TopN = s.topN(q.Get("top"), cur.TopN)
			cur.ShowRaw = q.Get("raw") != ""
		}

		sess = *cur
		cur.TakeFlash()

		return nil
	})
	if err != nil {
		s.redirectHome(w, r)

		return
	}

	files, err := s.loader.Discover()
	if err != nil {
		slog.Error("discover files", slog.Any("err", err))

		sess.Flash = &session.Flash{Level: session.LevelError, Message: err.Error()}
	}

	d := s.dashboard(&sess, files)

	buf := &bytes.Buffer{}
	if err := s.tmpl.ExecuteTemplate(buf, "index.html", d); err != nil {
		slog.Error("render dashboard", slog.Any("err", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) dashboard(sess *session.Session, files []dataset.File) *dashboard {
	groups := dataset.Groups(files)

	d := &dashboard{
		Flash:   sess.Flash,
		Version: version.Version,
		DataDir: s.loader.Dir(),

		Files:    files,
		Groups:   groups,
		Selected: make(map[string]bool, len(sess.Groups)),
		File:     sess.File,
		NoFiles:  len(files) == 0,

		GenerateCountries: strings.Join(dataset.DefaultGenerateCountries, ", "),
		GenerateRows:      defaultGenerateRows,
		GenerateRegions:   defaultGenerateRegions,
		MinGenerateRows:   dataset.MinGenerateRows,
		MaxGenerateRows:   dataset.MaxGenerateRows,
		MaxRegions:        dataset.MaxRegionsPerGroup,

		TopN:    s.topN("", sess.TopN),
		MinTopN: config.MinTopN,
		MaxTopN: config.MaxTopN,
		ShowRaw: sess.ShowRaw,
	}

	if len(groups) > 0 {
		d.GenerateCountries = strings.Join(groups, ", ")
	}

	for _, g := range sess.Groups {
		d.Selected[g] = true
	}

	t := sess.Table
	if t == nil {
		return d
	}

	d.Loaded = true
	d.Origin = sess.Origin
	d.Rows = t.Len()
	d.Columns = len(t.Columns)
	d.Numeric = t.NumericColumns()
	d.GroupCol = dataset.GroupColumn(t)
	d.ColorCol = colorColumn(t, d.GroupCol)

	if d.ShowRaw {
		d.Raw = t.Head(rawLimit)
		d.RawMore = t.Len() > rawLimit
	}

	variable, err := pickVariable(t, sess.Variable)
	if err != nil {
		d.Error = err.Error()

		return d
	}

	d.Variable = variable
	d.ChartArgs = template.URL(url.Values{ //nolint:gosec // Values are query-escaped.
		"variable": {variable},
		"top":      {strconv.Itoa(d.TopN)},
	}.Encode())

	top, err := s.topGroups(chartInput{table: t, variable: variable, group: d.GroupCol}, "", d.TopN)
	if err != nil {
		d.Error = fmt.Sprintf("Could not compute top %s: %v", d.GroupCol, err)

		return d
	}

	d.Top = top

	return d
}
