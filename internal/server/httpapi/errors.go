package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/httpx"
)

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	httpx.WriteError(w, r, status, code, message, nil)
}

func writeNotFound(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", message)
}

func writeUnauthenticated(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "Unauthenticated.")
}

func writeBadJSON(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusBadRequest, "BAD_JSON", err.Error())
}

func isAuthError(err error) bool {
	return errors.Is(err, common.ErrUnauthorized) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrRefreshTokenExpired)
}

// writeServiceError maps service errors onto the API error taxonomy.
// Anything unrecognised is logged and reported as a bare 500.
func (h *handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "VALIDATION", "The given data was invalid.", ve.Fields)
	case isAuthError(err):
		writeUnauthenticated(w, r)
	case errors.Is(err, common.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "This action is unauthorized.")
	case errors.Is(err, common.ErrNotFound):
		writeNotFound(w, r, "Not found.")
	case errors.Is(err, common.ErrConflict):
		writeError(w, r, http.StatusConflict, "CONFLICT", "Conflict.")
	default:
		h.logger.Error(r.Context(), "request failed", "error", err.Error(), "path", r.URL.Path,
			"request_id", httpx.RequestID(r.Context()))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "Internal server error.")
	}
}
