package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/thinktank/internal/model"
	"github.com/sakif/thinktank/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type prevents collisions: only this package can
// read or write the authenticated user in a request context.
type contextKey string

const userKey contextKey = "user"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the JWT from the "Authorization: Bearer <token>" header,
// validates it against the access-token service, resolves the user from the
// repository, and stores the full user record in the request context. Any
// failure stops the chain with 401.
//
// Two 401 variants matter to clients:
//   - expired token → body carries code "TOKEN_EXPIRED", the front end
//     silently refreshes and retries
//   - anything else (missing header, bad signature, deleted user) → generic
//     "invalid access token", the front end sends the user to login
//
// Resolving the user on every request costs a DB read, but it means a
// deleted account is locked out immediately rather than for as long as its
// last access token lives.
func RequireAuth(tokens *TokenService, users repository.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				writeUnauthorized(w, "Access token required", "")
				return
			}

			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					writeUnauthorized(w, "Access token expired", "TOKEN_EXPIRED")
					return
				}
				writeUnauthorized(w, "Invalid access token", "")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil || user == nil {
				// Valid token for a user that no longer exists.
				logger.Warn("auth: token references missing user", slog.String("userID", userID))
				writeUnauthorized(w, "Invalid access token", "")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request
// context. Returns (nil, false) if the request did not pass RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// bearerToken extracts the token from an "Authorization: Bearer X" header.
// Returns "" if the header is absent or not a bearer scheme.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeUnauthorized sends the standard 401 error envelope. Defined here
// (rather than reusing the handler package's helpers) to keep the
// dependency direction handler → auth.
func writeUnauthorized(w http.ResponseWriter, message, code string) {
	body := map[string]any{
		"success": false,
		"error":   "unauthorized",
		"message": message,
	}
	if code != "" {
		body["code"] = code
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(body)
}
