package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/akarpov/shortly/internal/models"
)

type contextKey string

// userKey is the context key under which the authenticated user is stored.
const userKey contextKey = "user"

// tokenScheme is the expected Authorization header scheme.
const tokenScheme = "Token"

// tokenAuth gates the URL endpoints behind the opaque bearer token. The header
// is checked before any body validation; failures are rendered as plain text.
func tokenAuth(svc AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				renderText(w, http.StatusUnauthorized, missingAuthHeaderText)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || scheme != tokenScheme || token == "" {
				renderText(w, http.StatusUnauthorized, invalidAuthTokenText)
				return
			}

			user, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				renderText(w, http.StatusUnauthorized, invalidAuthTokenText)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFromContext extracts the authenticated user set by tokenAuth.
func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// renderText writes a plain-text body with no trailing newline. The exact
// bytes are part of the API contract.
func renderText(w http.ResponseWriter, statusCode int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	fmt.Fprint(w, msg)
}
