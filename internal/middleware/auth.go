package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"feedbackhub-backend/internal/models"
)

type contextKey string

const (
	tokenKey contextKey = "bearer_token"
	adminKey contextKey = "admin"
)

type TokenValidator interface {
	Validate(token string) (models.AdminIdentity, error)
}

// AdminAuth requires "Authorization: Bearer <token>" carrying a valid admin
// token. The raw token and the admin identity are stored in the request context.
func AdminAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "authorization header is missing")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "authorization header is malformed")
				return
			}

			admin, err := validator.Validate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, parts[1])
			ctx = context.WithValue(ctx, adminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetToken returns the bearer token stored by AdminAuth, or "".
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// GetAdmin returns the admin identity stored by AdminAuth.
func GetAdmin(ctx context.Context) (models.AdminIdentity, bool) {
	admin, ok := ctx.Value(adminKey).(models.AdminIdentity)
	return admin, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
