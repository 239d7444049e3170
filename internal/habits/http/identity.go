package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/habits/pkg/httpx"
)

// Identity reconciles the userId a client names with the session token it
// presents.
type Identity struct {
	// RequireAuth makes a session token mandatory on user scoped routes.
	RequireAuth bool
}

// User returns the acting user for a user scoped route. A token subject
// must match any supplied id and fills it in when omitted.
func (id Identity) User(r *http.Request, supplied string) (string, error) {
	supplied = strings.TrimSpace(supplied)

	if subject, ok := httpx.UserIDFromContext(r.Context()); ok {
		if supplied != "" && supplied != subject {
			return "", errUserMismatch
		}
		return subject, nil
	}
	if id.RequireAuth {
		return "", errAuthRequired
	}
	if supplied == "" {
		return "", errMissingUser
	}
	return supplied, nil
}

// OptionalUser is User for routes that allow anonymous callers. An empty
// result means anonymous.
func (id Identity) OptionalUser(r *http.Request, supplied string) (string, error) {
	supplied = strings.TrimSpace(supplied)

	if subject, ok := httpx.UserIDFromContext(r.Context()); ok {
		if supplied != "" && supplied != subject {
			return "", errUserMismatch
		}
		return subject, nil
	}
	return supplied, nil
}
