package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avelkin/storefront/internal/auth"
	"github.com/avelkin/storefront/internal/cart"
)

const (
	accessCookieName  = "accessToken"
	sessionCookieName = "cart_session"

	ctxUserID    = "user_id"
	ctxUserRole  = "user_role"
	ctxSessionID = "session_id"
)

func newCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// EnsureSession guarantees every visitor carries a cart session token, so
// anonymous carts always have an owner.
func EnsureSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ck, err := c.Cookie(sessionCookieName)
		if err != nil || ck.Value == "" {
			token := uuid.NewString()
			c.SetCookie(newCookie(sessionCookieName, token, "/", time.Now().Add(30*24*time.Hour)))
			c.Set(ctxSessionID, token)
			return next(c)
		}
		c.Set(ctxSessionID, ck.Value)
		return next(c)
	}
}

// WithUser extracts the authenticated user from the access cookie when one
// is present. Guests pass through untouched.
func WithUser(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(accessCookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}
			userID, role, err := auth.ParseToken(ck.Value, secret)
			if err != nil {
				return next(c)
			}
			c.Set(ctxUserID, userID)
			c.Set(ctxUserRole, role)
			return next(c)
		}
	}
}

func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUserID(c) == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get(ctxUserRole).(string)
		if role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	}
}

func currentUserID(c echo.Context) uint {
	id, _ := c.Get(ctxUserID).(uint)
	return id
}

func currentSessionID(c echo.Context) string {
	s, _ := c.Get(ctxSessionID).(string)
	return s
}

// currentOwner resolves the cart owner for this request: the authenticated
// user when present, the anonymous session otherwise.
func currentOwner(c echo.Context) (cart.Owner, error) {
	return cart.ResolveOwner(currentUserID(c), currentSessionID(c))
}
