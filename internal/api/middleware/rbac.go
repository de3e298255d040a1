package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRoles admits only identities whose role is in the allowed set. It is
// the single role gate: route declarations name their required roles here and
// nowhere else. A request reaching this middleware without claims (Auth not
// run or token rejected) holds no role and is refused.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
