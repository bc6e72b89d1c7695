package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medidesk/medidesk/internal/platform/apperr"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context by the
// bearer middleware.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

// Middleware verifies the bearer token on every request and attaches the
// resulting Identity to the request context. Requests without a valid,
// unexpired token are rejected before any handler logic runs. WebSocket
// upgrades cannot set headers, so a "token" query parameter is accepted as a
// fallback.
func Middleware(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := ""
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
					return apperr.Unauthenticated("invalid authorization format")
				}
				tokenStr = parts[1]
			} else {
				tokenStr = c.QueryParam("token")
			}
			if tokenStr == "" {
				return apperr.Unauthenticated("authentication required")
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				return err
			}

			ident := &Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     claims.Role,
			}
			ctx := context.WithValue(c.Request().Context(), identityKey, ident)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// FromContext returns the Identity attached by Middleware, or nil.
func FromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}

// WithIdentity is used by tests to inject a caller identity.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// RequireRole returns middleware that allows only the listed roles. An empty
// list means any authenticated identity.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := FromContext(c.Request().Context())
			if ident == nil {
				return apperr.Unauthenticated("authentication required")
			}
			if len(roles) == 0 {
				return next(c)
			}
			for _, r := range roles {
				if ident.Role == r {
					return next(c)
				}
			}
			return apperr.Forbidden("role not permitted for this operation")
		}
	}
}
