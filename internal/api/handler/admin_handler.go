package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clientespro/client-manager/internal/api/metrics"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// AdminHandler serves the administrator routes.
type AdminHandler struct {
	admin   ports.AdminService
	clients ports.ClientService
	stats   ports.StatsService
}

func NewAdminHandler(admin ports.AdminService, clients ports.ClientService, stats ports.StatsService) *AdminHandler {
	return &AdminHandler{admin: admin, clients: clients, stats: stats}
}

// ListUsers handles GET /admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	users, err := h.admin.ListUsers(c.Request().Context(), au.User)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{Results: len(users), Users: users})
}

// GetUser handles GET /admin/users/:id.
//
// @Summary      Get a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.admin.GetUser(c.Request().Context(), au.User, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateUser handles PUT /admin/users/:id. Passwords cannot be set here.
//
// @Summary      Update a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.admin.UpdateUser(c.Request().Context(), au.User, c.Param("id"), ports.UpdateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Active:   req.Active,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateRole handles PUT /admin/users/:id/role.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /admin/users/{id}/role [put]
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.admin.UpdateRole(c.Request().Context(), au.User, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// DeleteUser handles DELETE /admin/users/:id. The user's clients go with it.
//
// @Summary      Delete a user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.admin.DeleteUser(c.Request().Context(), au.User, c.Param("id")); err != nil {
		return err
	}

	metrics.UsersDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// ListClients handles GET /admin/clients, the listing across every owner.
//
// @Summary      List all clients
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        q         query     string  false  "Search name, email or company"
// @Param        status    query     string  false  "Filter by status"
// @Param        priority  query     string  false  "Filter by priority"
// @Success      200       {object}  clientListResponse
// @Router       /admin/clients [get]
func (h *AdminHandler) ListClients(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	clients, err := h.clients.ListAll(c.Request().Context(), au.User, listInput(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientListResponse{Results: len(clients), Clients: clients})
}

// ClientStats handles GET /admin/stats/clients.
//
// @Summary      Client statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ClientStats
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/stats/clients [get]
func (h *AdminHandler) ClientStats(c echo.Context) error {
	stats, err := h.stats.ClientStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// UserStats handles GET /admin/stats/users.
//
// @Summary      User statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.UserStats
// @Router       /admin/stats/users [get]
func (h *AdminHandler) UserStats(c echo.Context) error {
	stats, err := h.stats.UserStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
