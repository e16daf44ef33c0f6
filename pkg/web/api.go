package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MacroPower/csvdash/pkg/dataset"
)

type apiError struct {
	Error string `json:"error"`
}

type fileList struct {
	Dir   string         `json:"dir"`
	Files []dataset.File `json:"files"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", slog.Any("err", err))
	}
}

// statusOf maps load errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, dataset.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrParse),
		errors.Is(err, dataset.ErrEmptyFile),
		errors.Is(err, dataset.ErrTooLarge):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

func (s *Server) handleAPIFiles(w http.ResponseWriter, _ *http.Request) {
	files, err := s.loader.Discover()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})

		return
	}

	writeJSON(w, http.StatusOK, fileList{Dir: s.loader.Dir(), Files: files})
}

func (s *Server) handleAPIFile(w http.ResponseWriter, r *http.Request) {
	tbl, err := s.loader.Load(r.PathValue("name"))
	if err != nil {
		writeJSON(w, statusOf(err), apiError{Error: err.Error()})

		return
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "limit must be a non-negative integer"})

			return
		}

		tbl = tbl.Head(n)
	}

	writeJSON(w, http.StatusOK, tbl)
}
