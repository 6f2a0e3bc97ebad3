package middleware

// identity.go holds the helpers that move the authenticated caller between
// the JWT middleware, handlers and the other middleware.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campaign-companion/internal/model"
)

const identityKey = "identity"

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c echo.Context, id model.Identity) { c.Set(identityKey, id) }

// CurrentIdentity returns the caller stored by JWTAuth.
func CurrentIdentity(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok && id.UserID != ""
}

// UserID returns the caller's id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	id, _ := CurrentIdentity(c)
	return id.UserID
}
