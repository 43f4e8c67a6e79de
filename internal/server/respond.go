package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/salhakar/doceditor"
	"github.com/salhakar/doceditor/internal/hints"
)

// statusError carries an explicit HTTP status.
type statusError struct {
	code  int
	err   error
	limit int64 // upload limit for 413 responses
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &statusError{code: http.StatusBadRequest, err: err}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error    string `json:"error"`
	Hint     string `json:"hint,omitempty"`
	Fallback string `json:"fallbackHTML,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes the error body.
// Load failures carry the fallback markup the client shows in place of
// the editor.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, hint := classify(err)
	body := errorBody{Error: err.Error(), Hint: trimHint(hint)}
	if errors.Is(err, doceditor.ErrLoad) {
		body.Fallback = s.cfg.Loader.Fallback(err)
	}

	level := s.logger.Warn
	if code >= http.StatusInternalServerError {
		level = s.logger.Error
	}
	level("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", code,
		"error", err)

	writeJSON(w, code, body)
}

// classify returns the HTTP status and an optional hint for err.
func classify(err error) (int, string) {
	var se *statusError
	if errors.As(err, &se) {
		if se.code == http.StatusRequestEntityTooLarge {
			return se.code, hints.ForUploadTooLarge(se.limit)
		}
		return se.code, ""
	}
	if fe, ok := doceditor.IsFetchError(err); ok {
		return http.StatusBadGateway, hints.ForFetch(fe.StatusCode)
	}

	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, ""
	case errors.Is(err, ErrTooManySessions), errors.Is(err, doceditor.ErrPoolClosed):
		return http.StatusServiceUnavailable, ""
	case errors.Is(err, ErrLocalPathRefused):
		return http.StatusForbidden, ""
	case errors.Is(err, doceditor.ErrInvalidFileType):
		return http.StatusUnsupportedMediaType, hints.ForFileType()
	case errors.Is(err, doceditor.ErrEmptyFile), errors.Is(err, doceditor.ErrUnknownCommand):
		return http.StatusBadRequest, ""
	case errors.Is(err, doceditor.ErrNothingToUndo):
		return http.StatusConflict, ""
	case errors.Is(err, doceditor.ErrLoad):
		return http.StatusUnprocessableEntity, ""
	case errors.Is(err, doceditor.ErrBrowserConnect):
		return http.StatusServiceUnavailable, hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, hints.ForTimeout()
	}
	return http.StatusInternalServerError, ""
}

// trimHint strips the CLI layout from a hint.
func trimHint(h string) string {
	return strings.TrimPrefix(h, "\n  hint: ")
}
