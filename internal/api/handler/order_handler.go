package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations. Scoping and
// transition rules live in the service; the handler only maps the wire.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// List handles GET /api/orders.
//
// @Summary      List orders visible to the caller
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status (administrator only)"
// @Success      200     {array}   orderResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	orders, err := h.service.List(c.Request().Context(), ports.ListOrdersInput{
		Identity: identity,
		Status:   c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return c.JSON(http.StatusOK, resp)
}

// Place handles POST /api/orders.
//
// @Summary      Place a new order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      placeOrderRequest  true  "Order lines and delivery address"
// @Success      201   {object}  orderResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	items := make([]ports.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.service.Place(c.Request().Context(), ports.PlaceOrderInput{
		UserID:  identity.UserID,
		Address: req.Address,
		Items:   items,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Details handles GET /api/orders/:id/details.
//
// @Summary      Get the line items of an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order id"
// @Success      200  {array}   orderItemResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/orders/{id}/details [get]
func (h *OrderHandler) Details(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.service.Details(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}

	resp := make([]orderItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Tracking handles GET /api/orders/:id/tracking.
//
// @Summary      Get the status history of an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order id"
// @Success      200  {array}   historyEntryResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/orders/{id}/tracking [get]
func (h *OrderHandler) Tracking(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	entries, err := h.service.Tracking(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}

	resp := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, historyEntryResponse{
			Status:    string(e.Status),
			Timestamp: e.Timestamp.UTC(),
			Notes:     e.Notes,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel handles PUT /api/orders/:id/cancel.
//
// @Summary      Cancel an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/orders/{id}/cancel [put]
func (h *OrderHandler) Cancel(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Cancel(c.Request().Context(), identity, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "order cancelled"})
}

// Assign handles PUT /api/orders/:id/assign.
//
// @Summary      Assign a courier to an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Order id"
// @Param        body  body      assignCourierRequest  true  "Courier to assign"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/orders/{id}/assign [put]
func (h *OrderHandler) Assign(c echo.Context) error {
	var req assignCourierRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.service.AssignCourier(c.Request().Context(), c.Param("id"), req.CourierID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "courier assigned"})
}

// Deliver handles PUT /api/orders/:id/deliver.
//
// @Summary      Mark an order as delivered
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/orders/{id}/deliver [put]
func (h *OrderHandler) Deliver(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkDelivered(c.Request().Context(), identity, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "delivery validated"})
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		CourierID: o.CourierID,
		Address:   o.Address,
		Status:    string(o.Status),
		Total:     o.Total,
		CreatedAt: o.CreatedAt.UTC(),
	}
}
