package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/server"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondError maps domain errors onto HTTP statuses. Unknown errors
// become a 500 with a generic body; the detail goes to the log only.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "authentication required"
	case errors.Is(err, auth.ErrPermissionDenied):
		status, message = http.StatusForbidden, "permission denied"
	case errors.Is(err, server.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrEntryLocked):
		status, message = http.StatusConflict, "entry is locked"
	case errors.Is(err, store.ErrProfileAlreadyExists),
		errors.Is(err, store.ErrProjectAlreadyExists),
		errors.Is(err, store.ErrMembershipAlreadyExists),
		errors.Is(err, store.ErrOrganizationAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, store.ErrEntryNotFound),
		errors.Is(err, store.ErrProfileNotFound),
		errors.Is(err, store.ErrProjectNotFound),
		errors.Is(err, store.ErrMembershipNotFound),
		errors.Is(err, store.ErrOrganizationNotFound):
		status, message = http.StatusNotFound, err.Error()
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}

	respondJSON(w, status, errorResponse{Error: message})
}
