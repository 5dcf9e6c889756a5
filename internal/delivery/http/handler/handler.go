package handler

import (
	"errors"
	"net/http"

	"medassist/pkg/apperr"
	"medassist/pkg/response"
)

// respondError maps a classified error to its HTTP status. Unclassified
// errors fall back to a 500 with the given message.
func respondError(w http.ResponseWriter, err error, fallback string) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		response.InternalServerError(w, fallback)
		return
	}
	switch ae.Kind {
	case apperr.KindValidation:
		response.Error(w, http.StatusBadRequest, ae.Msg, nil)
	case apperr.KindConflict:
		response.Conflict(w, ae.Msg)
	case apperr.KindNotFound:
		response.NotFound(w, ae.Msg)
	case apperr.KindDependency:
		response.Error(w, http.StatusServiceUnavailable, ae.Msg, nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
