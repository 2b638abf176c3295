package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zenfin/internal/core"
	"zenfin/internal/report"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

// writeError maps domain errors onto the HTTP status taxonomy: invalid input
// is 422, a missing record is 404, everything else is an internal failure.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case isValidationError(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrUnknownCategory) ||
		errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrInvalidDate)
}

// monthParam reads year/month query parameters, defaulting to the current
// month. An explicit out-of-range value is a client error, not something to
// silently correct.
func monthParam(r *http.Request) (report.Month, error) {
	now := time.Now().UTC()
	m := report.Month{Year: now.Year(), Month: now.Month()}

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return report.Month{}, errors.New("invalid year parameter")
		}
		m.Year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		mo, err := strconv.Atoi(v)
		if err != nil || mo < 1 || mo > 12 {
			return report.Month{}, errors.New("invalid month parameter")
		}
		m.Month = time.Month(mo)
	}
	return m, nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
