package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrAssistantBusy):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrUploadFailed), domain.IsKind(err, domain.ErrAssistantFailed):
		return http.StatusBadGateway
	default:
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusInternalServerError
	}
}

// errorBody hides internal failure details from clients; they go to the log instead.
func errorBody(status int, err error) map[string]any {
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return map[string]any{"error": msg}
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	body := errorBody(status, err)
	if status == http.StatusUnauthorized && rt.sessions != nil {
		body["login_url"] = rt.sessions.LoginURL(r.URL.RequestURI())
	}

	if status >= http.StatusInternalServerError {
		slog.Error("http_handler_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, body)
}
