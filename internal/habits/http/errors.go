package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/pkg/httpx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

var (
	errUserMismatch = errors.New("userId does not match the session")
	errAuthRequired = errors.New("authentication required")
	errBadBody      = errors.New("malformed request body")
	errMissingUser  = errors.New("missing userId")
)

// writeError maps err onto a status code and the failure envelope. Anything
// unrecognised is logged and reported as a generic database error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := http.StatusInternalServerError, "Database error"

	switch {
	case errors.Is(err, errBadBody):
		code, msg = http.StatusBadRequest, "Malformed request body"
	case errors.Is(err, errMissingUser):
		code, msg = http.StatusBadRequest, "Missing userId"
	case errors.Is(err, service.ErrMissingFields):
		code, msg = http.StatusBadRequest, "Missing fields"
	case errors.Is(err, service.ErrInvalidEmail):
		code, msg = http.StatusBadRequest, "Invalid email address"
	case errors.Is(err, service.ErrInvalidDate):
		code, msg = http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD"
	case errors.Is(err, service.ErrInvalidRange):
		code, msg = http.StatusBadRequest, "startDate is after endDate"
	case errors.Is(err, service.ErrInvalidFilename):
		code, msg = http.StatusBadRequest, "Invalid filename"
	case errors.Is(err, errAuthRequired):
		code, msg = http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, service.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, errUserMismatch):
		code, msg = http.StatusForbidden, "userId does not match the session"
	case errors.Is(err, service.ErrUserNotFound):
		code, msg = http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrHabitNotFound):
		code, msg = http.StatusNotFound, "Habit not found"
	case errors.Is(err, service.ErrThreadNotFound):
		code, msg = http.StatusNotFound, "Thread not found"
	case errors.Is(err, service.ErrEmailTaken):
		code, msg = http.StatusConflict, "Email already registered"
	case errors.Is(err, service.ErrFileTooLarge):
		code, msg = http.StatusRequestEntityTooLarge, "File too large"
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}

	httpx.WriteError(w, code, msg)
}
