package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clientespro/client-manager/internal/api/metrics"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// ClientHandler serves the caller's client records.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

func listInput(c echo.Context) ports.ListClientsInput {
	return ports.ListClientsInput{
		Query:    c.QueryParam("q"),
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
	}
}

// List handles GET /clients.
//
// @Summary      List own clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        q         query     string  false  "Search name, email or company"
// @Param        status    query     string  false  "Filter by status"
// @Param        priority  query     string  false  "Filter by priority"
// @Success      200       {object}  clientListResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      401       {object}  ErrorResponse
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	clients, err := h.service.List(c.Request().Context(), au.User, listInput(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientListResponse{Results: len(clients), Clients: clients})
}

// Create handles POST /clients. The new client is owned by the caller.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client details"
// @Success      201   {object}  clientResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client, err := h.service.Create(c.Request().Context(), au.User, ports.CreateClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Company:   req.Company,
		Notes:     req.Notes,
		Status:    req.Status,
		Priority:  req.Priority,
		Tags:      req.Tags,
	})
	if err != nil {
		return err
	}

	metrics.ClientOperationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, clientResponse{Client: client})
}

// Get handles GET /clients/:id.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  clientResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	client, err := h.service.Get(c.Request().Context(), au.User, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientResponse{Client: client})
}

// Update handles PUT /clients/:id. Only the fields present in the body change.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client ID"
// @Param        body  body      updateClientRequest  true  "Fields to change"
// @Success      200   {object}  clientResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client, err := h.service.Update(c.Request().Context(), au.User, c.Param("id"), ports.UpdateClientInput{
		OwnerID:   req.OwnerID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Company:   req.Company,
		Notes:     req.Notes,
		Status:    req.Status,
		Priority:  req.Priority,
		Tags:      req.Tags,
	})
	if err != nil {
		return err
	}

	metrics.ClientOperationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, clientResponse{Client: client})
}

// TouchContact handles PUT /clients/:id/contact, recording a contact now.
//
// @Summary      Record a contact
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  clientResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /clients/{id}/contact [put]
func (h *ClientHandler) TouchContact(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	client, err := h.service.TouchContact(c.Request().Context(), au.User, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.ClientOperationsTotal.WithLabelValues("contact").Inc()
	return c.JSON(http.StatusOK, clientResponse{Client: client})
}

// Delete handles DELETE /clients/:id. Administrators only.
//
// @Summary      Delete a client
// @Tags         clients
// @Security     BearerAuth
// @Param        id   path  string  true  "Client ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), au.User, c.Param("id")); err != nil {
		return err
	}

	metrics.ClientOperationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

// FollowUps handles GET /clients/follow-up.
//
// @Summary      Clients due for follow-up
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clientListResponse
// @Router       /clients/follow-up [get]
func (h *ClientHandler) FollowUps(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	clients, err := h.service.FollowUps(c.Request().Context(), au.User)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientListResponse{Results: len(clients), Clients: clients})
}

// Stats handles GET /clients/stats.
//
// @Summary      Own client statistics
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.OwnerStats
// @Router       /clients/stats [get]
func (h *ClientHandler) Stats(c echo.Context) error {
	au, err := currentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.service.OwnerStats(c.Request().Context(), au.User)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
