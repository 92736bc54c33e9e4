package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
)

const viewerKey = "viewer"

// TokenVerifier turns a bearer token into a user id
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// ResolveViewer attaches the request's viewer. A missing Authorization header
// means an anonymous viewer; a malformed or rejected token is a 401. With a
// nil verifier every request is anonymous.
func ResolveViewer(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" || verifier == nil {
				c.Set(viewerKey, models.Anonymous)
				return next(c)
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return errs.Unauthenticated("authorization header must be in Bearer format")
			}

			userID, err := verifier.Verify(c.Request().Context(), token)
			if err != nil || userID == "" {
				return errs.Wrap(err, errs.KindUnauthenticated, "invalid or expired token")
			}
			c.Set(viewerKey, models.ViewerOf(userID))
			return next(c)
		}
	}
}

// RequireViewer rejects anonymous requests
func RequireViewer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !Viewer(c).Present() {
			return errs.Unauthenticated("sign in required")
		}
		return next(c)
	}
}

// Viewer returns the viewer resolved for c, anonymous if none
func Viewer(c echo.Context) models.Viewer {
	v, _ := c.Get(viewerKey).(models.Viewer)
	return v
}
