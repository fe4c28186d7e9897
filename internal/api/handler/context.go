package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/clientespro/client-manager/internal/api/middleware"
	"github.com/clientespro/client-manager/internal/core/domain"
)

// currentUser returns the identity the auth gate attached. Reaching a handler
// without one means the route was registered without the gate.
func currentUser(c echo.Context) (*middleware.AuthenticatedUser, error) {
	au, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrNotIdentified
	}
	return au, nil
}
