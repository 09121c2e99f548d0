package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/export"
	"github.com/example/photomark/internal/ingest"
	"github.com/example/photomark/internal/surface"
)

var errSessionNotFound = errors.New("session not found")

// badRequestError marks client mistakes such as malformed JSON.
type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &badRequestError{err: err} }

// ErrResponse is the JSON body of every failed request.
type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// statusFor maps editor and store errors to HTTP statuses.
func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad), errors.Is(err, surface.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, errSessionNotFound), errors.Is(err, export.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrClosed), errors.Is(err, editor.ErrLoading):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, editor.ErrEmptyText), errors.Is(err, surface.ErrEmptyExport):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func errResponse(err error) *ErrResponse {
	code := statusFor(err)
	return &ErrResponse{HTTPStatusCode: code, StatusText: http.StatusText(code), ErrorText: err.Error()}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	resp := errResponse(err)
	entry := s.log.WithError(err).WithFields(logrus.Fields{"path": r.URL.Path, "status": resp.HTTPStatusCode})
	if resp.HTTPStatusCode >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	render.Render(w, r, resp)
}
