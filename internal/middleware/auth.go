package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"bizportal/internal/domain"
	"bizportal/internal/infra"
	"bizportal/internal/sqlinline"
)

// AuthUser is the authenticated identity attached to the request context.
// Handlers that need the full record re-query it; every request is
// independently re-verified, there is no session store.
type AuthUser struct {
	ID    string
	Email string
	Role  domain.UserRole
}

type contextKey string

const authUserKey contextKey = "auth_user"

// SignToken issues an HS256 bearer token whose subject is the user ID.
func SignToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry and returns the claims.
func ParseToken(secret, raw string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Protect authenticates the bearer token and resolves it to a live user
// record. Requests with a missing, invalid or expired token, or whose user
// no longer exists, are rejected with 401.
func Protect(secret string, sql infra.SQLExecutor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}
			claims, err := ParseToken(secret, parts[1])
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			var usr AuthUser
			row := sql.QueryRow(r.Context(), sqlinline.QSelectAuthUser, claims.Subject)
			if err := row.Scan(&usr.ID, &usr.Email, &usr.Role); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "User not found")
				return
			}

			ctx := context.WithValue(r.Context(), authUserKey, usr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles gates a route to the listed roles. Must run after Protect.
func RequireRoles(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			usr, ok := CurrentUser(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}
			for _, role := range roles {
				if usr.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthError(w, http.StatusForbidden, fmt.Sprintf("Access denied for %s", usr.Role))
		})
	}
}

// CurrentUser returns the authenticated user attached by Protect.
func CurrentUser(ctx context.Context) (AuthUser, bool) {
	usr, ok := ctx.Value(authUserKey).(AuthUser)
	return usr, ok
}

// ContextWithUser attaches an AuthUser, used by handler tests to bypass
// token verification.
func ContextWithUser(ctx context.Context, usr AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey, usr)
}

func writeAuthError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
