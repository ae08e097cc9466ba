package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/httputil"
	"github.com/interview-prep/backend/internal/models"
)

type contextKey int

const userKey contextKey = iota

// TokenVerifier turns a bearer token into the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder loads the user a token refers to.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// UserID extracts the authenticated user id from the request context.
func UserID(r *http.Request) (string, bool) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		return "", false
	}
	return u.ID, true
}

// Authenticate requires a valid "Authorization: Bearer <token>" header whose
// user still exists.
func Authenticate(tokens TokenVerifier, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				httputil.WriteMessage(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}

			userID, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				httputil.WriteMessage(w, http.StatusUnauthorized, "Token is not valid")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if errors.Is(err, apperr.ErrNotFound) {
				httputil.WriteMessage(w, http.StatusUnauthorized, "User not found")
				return
			}
			if err != nil {
				httputil.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !user.IsAdmin() {
			httputil.WriteMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
