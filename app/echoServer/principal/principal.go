// Request-scoped actor helpers, shared by the middleware and controllers.
package principal

import (
	"strings"

	"rentaladmin/access"

	"github.com/labstack/echo/v4"
)

const key = "principal"

func Set(c echo.Context, p *access.Principal) { c.Set(key, p) }

// From returns the actor built by the auth middleware, nil on public routes.
func From(c echo.Context) *access.Principal {
	p, _ := c.Get(key).(*access.Principal)
	return p
}

// RawToken strips the Bearer prefix off the Authorization header.
func RawToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	return strings.TrimPrefix(h, "Bearer ")
}
