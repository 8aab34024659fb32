package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baketrak/order-system/internal/core/ports"
)

// ProductHandler serves the public product catalog.
type ProductHandler struct {
	catalog ports.CatalogService
}

func NewProductHandler(catalog ports.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// List handles GET /api/products. Public, no auth.
//
// @Summary      List the product catalog
// @Tags         products
// @Produce      json
// @Success      200  {array}   domain.Product
// @Failure      500  {object}  errorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}
