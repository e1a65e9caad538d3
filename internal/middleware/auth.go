package middleware

import (
	"context"
	"net/http"

	"figaros/internal/utils"
)

type contextKey string

// SessionKey holds the *utils.Session of the authenticated request.
const SessionKey contextKey = "session"

// Auth guards a route group behind the access_token session cookie.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("access_token")
			if err != nil || cookie.Value == "" {
				utils.Error(w, http.StatusUnauthorized, "No autenticado.")
				return
			}
			session, err := utils.ParseSessionToken(cookie.Value, secret)
			if err != nil {
				utils.Error(w, http.StatusUnauthorized, "Sesión inválida o expirada.")
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom extracts the session placed in the context by Auth.
func SessionFrom(ctx context.Context) (*utils.Session, bool) {
	s, ok := ctx.Value(SessionKey).(*utils.Session)
	return s, ok
}
