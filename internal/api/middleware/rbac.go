package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/clientespro/client-manager/internal/core/domain"
)

// Authorize lets the request through only when Authenticate has already run
// and the user holds one of roles.
func Authorize(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := domain.NewRoleSet(roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			au, ok := CurrentUser(c)
			if !ok {
				return reject("unidentified", domain.ErrNotIdentified)
			}
			if !domain.HasRole(au.User, allowed) {
				return reject("role", domain.ErrRoleForbidden)
			}
			return next(c)
		}
	}
}
