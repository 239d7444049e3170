package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/habits/pkg/jwtx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

// AuthnMiddleware verifies a bearer session token when one is presented.
// Requests without an Authorization header pass through anonymously unless
// required is set. A token that fails verification is always rejected.
func AuthnMiddleware(v jwtx.Verifier, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" {
				if required {
					writeBearerError(w, "missing bearer token")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(authz, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeBearerError(w, "malformed authorization header")
				return
			}

			claims, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				log.Warn("session token rejected", "err", err)
				writeBearerError(w, "invalid or expired session token")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750 challenge plus the usual failure envelope.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, desc)
}
