package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fkhayef/duesledger/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
	// RoleKey is the context key for the authenticated user's role
	RoleKey ContextKey = "role"
)

// Roles known to the portal
const (
	RoleAdmin   = "admin"
	RoleHOD     = "hod"
	RoleStudent = "student"
)

// Claims are the claims the identity provider puts in access tokens
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RoleLookup resolves a user's role. It returns an empty role for unknown users.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID int64) (string, error)
}

// AuthConfig configures Authenticate
type AuthConfig struct {
	Secret []byte
	// AllowTestHeader accepts X-Test-User-ID instead of a token (DEV ONLY)
	AllowTestHeader bool
	Lookup          RoleLookup
}

// Authenticate verifies the bearer token issued by the identity provider and
// puts the caller's ID and role in the request context
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			if authHeader == "" && cfg.AllowTestHeader && cfg.Lookup != nil {
				if userID, role, ok := testUser(r, cfg.Lookup); ok {
					next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), userID, role)))
					return
				}
			}

			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := ParseToken(parts[1], cfg.Secret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.UserID, claims.Role)))
		})
	}
}

// ParseToken validates an HMAC-signed token and returns its claims
func ParseToken(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID <= 0 || claims.Role == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// testUser reads X-Test-User-ID and resolves its role (DEV ONLY)
func testUser(r *http.Request, lookup RoleLookup) (int64, string, bool) {
	userIDStr := r.Header.Get("X-Test-User-ID")
	if userIDStr == "" {
		return 0, "", false
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		return 0, "", false
	}
	role, err := lookup.RoleOf(r.Context(), userID)
	if err != nil || role == "" {
		return 0, "", false
	}
	return userID, role, true
}

// RequireRole rejects callers whose role is not one of roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRole(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

// WithIdentity stores the caller's ID and role in ctx
func WithIdentity(ctx context.Context, userID int64, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleKey, role)
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetRole extracts the user's role from the request context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// IsStaff reports whether the caller is an admin or head of department
func IsStaff(ctx context.Context) bool {
	role, _ := GetRole(ctx)
	return role == RoleAdmin || role == RoleHOD
}

// CanAccessStudent reports whether the caller may read a student's records:
// staff may read anyone, students only themselves
func CanAccessStudent(ctx context.Context, studentID int64) bool {
	if IsStaff(ctx) {
		return true
	}
	userID, ok := GetUserID(ctx)
	return ok && userID == studentID
}
