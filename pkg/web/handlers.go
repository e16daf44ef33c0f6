package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/MacroPower/csvdash/pkg/config"
	"github.com/MacroPower/csvdash/pkg/dataset"
	"github.com/MacroPower/csvdash/pkg/plot"
	"github.com/MacroPower/csvdash/pkg/session"
	"github.com/MacroPower/csvdash/pkg/stats"
)

const (
	defaultGenerateRows    = 200
	defaultGenerateRegions = 5
	chartCSP               = "default-src 'none'; style-src 'unsafe-inline'"
)

// ErrNoNumeric indicates the loaded table has no numeric column to chart.
var ErrNoNumeric = errors.New("no numeric columns found in loaded data")

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9]+`)

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// update applies fn to the request's session. A session that expired
// between the middleware and the handler is replaced on the next request.
func (s *Server) update(r *http.Request, fn func(*session.Session) error) {
	err := s.store.Update(sessionID(r.Context()), fn)
	if err != nil {
		slog.Warn("update session", slog.Any("err", err))
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	file := strings.TrimSpace(r.PostForm.Get("file"))
	groups := slices.DeleteFunc(r.PostForm["group"], func(g string) bool { return strings.TrimSpace(g) == "" })

	var (
		tbl    *dataset.Table
		origin string
		err    error
	)

	switch {
	case file != "":
		origin = file

		tbl, err = s.loader.Load(file)
		if err == nil {
			tbl.SetDefault(dataset.CountryColumn, dataset.GroupOf(file))
		}
	case len(groups) > 0:
		origin = strings.Join(groups, ", ")
		tbl, err = s.loader.LoadGroups(r.Context(), groups...)
	}

	s.update(r, func(sess *session.Session) error {
		sess.File = file
		sess.Groups = groups

		switch {
		case file == "" && len(groups) == 0:
			sess.Notify(session.LevelWarn, "Select a file or at least one group.")
		case err != nil:
			slog.Warn("load failed", slog.String("source", origin), slog.Any("err", err))
			sess.Notify(session.LevelError, "Could not load %s: %v", origin, err)
		default:
			sess.SetTable(tbl, origin)
			sess.Notify(session.LevelSuccess, "Loaded %d rows from %s.", tbl.Len(), origin)
		}

		return nil
	})

	s.redirectHome(w, r)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	f, hdr, err := r.FormFile("file")
	if err != nil {
		s.update(r, func(sess *session.Session) error {
			sess.Notify(session.LevelError, "Could not read uploaded CSV: %v", err)

			return nil
		})
		s.redirectHome(w, r)

		return
	}
	defer f.Close() //nolint:errcheck // Read-only.

	tbl, err := dataset.Parse(f, s.cfg.Options())
	if err == nil {
		tbl.Source = hdr.Filename
		tbl.SetDefault(dataset.CountryColumn, "Uploaded")
	}

	s.update(r, func(sess *session.Session) error {
		if err != nil {
			sess.Notify(session.LevelError, "Could not read uploaded CSV: %v", err)

			return nil
		}

		sess.SetTable(tbl, "upload "+hdr.Filename)
		sess.Notify(session.LevelSuccess, "Loaded uploaded CSV as data source.")

		return nil
	})

	s.redirectHome(w, r)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	opts := dataset.GenerateOptions{
		Countries:         dataset.ParseCountries(r.PostForm.Get("countries")),
		Rows:              formInt(r.PostForm.Get("rows"), defaultGenerateRows),
		RegionsPerCountry: formInt(r.PostForm.Get("regions"), defaultGenerateRegions),
	}

	tbl := dataset.Generate(opts, s.rand())

	s.update(r, func(sess *session.Session) error {
		sess.SetTable(tbl, "generated data")
		sess.Notify(session.LevelSuccess, "Generated random dataset with %d rows.", tbl.Len())

		return nil
	})

	s.redirectHome(w, r)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.update(r, func(sess *session.Session) error {
		sess.Clear()

		return nil
	})

	s.redirectHome(w, r)
}

// chartInput resolves the table, value column and group column a chart is
// drawn from.
type chartInput struct {
	table    *dataset.Table
	variable string
	group    string
}

func (s *Server) chartInput(r *http.Request) (chartInput, int, error) {
	sess, err := s.store.Get(sessionID(r.Context()))
	if err != nil {
		return chartInput{}, http.StatusNotFound, err
	}

	if sess.Table == nil {
		return chartInput{}, http.StatusNotFound, plot.ErrNoData
	}

	variable, err := pickVariable(sess.Table, r.URL.Query().Get("variable"), sess.Variable)
	if err != nil {
		return chartInput{}, http.StatusUnprocessableEntity, err
	}

	return chartInput{
		table:    sess.Table,
		variable: variable,
		group:    dataset.GroupColumn(sess.Table),
	}, http.StatusOK, nil
}

func (s *Server) handleBoxChart(w http.ResponseWriter, r *http.Request) {
	in, code, err := s.chartInput(r)
	if err != nil {
		http.Error(w, err.Error(), code)

		return
	}

	groups, err := stats.SummarizeBy(in.table, in.group, in.variable)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)

		return
	}

	s.writeChart(w, func(buf *bytes.Buffer) error {
		return plot.BoxPlot(buf, groups, plot.Options{
			Title:  fmt.Sprintf("%s by %s", in.variable, in.group),
			YLabel: in.variable,
			Points: true,
		})
	})
}

func (s *Server) handleTopChart(w http.ResponseWriter, r *http.Request) {
	in, code, err := s.chartInput(r)
	if err != nil {
		http.Error(w, err.Error(), code)

		return
	}

	top, err := s.topGroups(in, r.URL.Query().Get("top"), 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)

		return
	}

	s.writeChart(w, func(buf *bytes.Buffer) error {
		return plot.TopBar(buf, top, plot.Options{
			Title:  fmt.Sprintf("Top %s by average %s", in.group, in.variable),
			YLabel: "mean " + in.variable,
		})
	})
}

func (s *Server) topGroups(in chartInput, requested string, fallback int) ([]stats.Group, error) {
	groups, err := stats.GroupBy(in.table, in.group, colorColumn(in.table, in.group), in.variable)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already descriptive.
	}

	return stats.Top(groups, s.topN(requested, fallback)), nil
}

// topN parses a requested top-N value, falling back to fallback and then to
// the configured default, and clamps the result.
func (s *Server) topN(requested string, fallback int) int {
	n := formInt(requested, fallback)
	if n == 0 {
		n = s.cfg.DefaultTopN
	}

	return min(max(n, config.MinTopN), config.MaxTopN)
}

func (s *Server) writeChart(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	buf := &bytes.Buffer{}
	if err := render(buf); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, plot.ErrNoData) {
			code = http.StatusUnprocessableEntity
		}

		http.Error(w, err.Error(), code)

		return
	}

	w.Header().Set("Content-Type", plot.FormatSVG.ContentType())
	w.Header().Set("Content-Security-Policy", chartCSP)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(sessionID(r.Context()))
	if err != nil || sess.Table == nil {
		http.Error(w, "no data loaded", http.StatusNotFound)

		return
	}

	buf := &bytes.Buffer{}
	if err := sess.Table.WriteCSV(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(sess.Origin)))
	_, _ = w.Write(buf.Bytes())
}

// downloadName returns a file name for a table loaded from origin.
func downloadName(origin string) string {
	name := strcase.ToSnake(strings.TrimSpace(unsafeFilename.ReplaceAllString(origin, " ")))
	name = strings.TrimSuffix(name, "_csv")

	if name == "" {
		name = "selected_data"
	}

	return "csvdash_" + name + ".csv"
}

// pickVariable returns the first of the candidates that is a numeric column
// of t, or the first numeric column.
func pickVariable(t *dataset.Table, candidates ...string) (string, error) {
	numeric := t.NumericColumns()
	if len(numeric) == 0 {
		return "", ErrNoNumeric
	}

	for _, c := range candidates {
		if slices.Contains(numeric, c) {
			return c, nil
		}
	}

	return numeric[0], nil
}

// colorColumn returns the column that splits groups into sub-series.
func colorColumn(t *dataset.Table, group string) string {
	if group != dataset.CountryColumn && t.HasColumn(dataset.CountryColumn) {
		return dataset.CountryColumn
	}

	return ""
}

func formInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}

	return n
}
