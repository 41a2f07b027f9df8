package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caobathien/Church/authz"
)

// RequireAdmin chặn sớm các nhóm route quản trị. Quyết định vẫn là của
// authz.Authorize — middleware này chỉ gọi hộ, không tự kiểm tra role.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authz.Authorize(CurrentUser(c), authz.ActionAdminister, authz.AdminOnly()); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, map[string]any{
					"error":   "FORBIDDEN",
					"message": err.Error(),
				})
			}
			return next(c)
		}
	}
}
