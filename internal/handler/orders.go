package handler

import (
	"log"
	"net/http"
	"strconv"
	"usdc-storefront/internal/dto"
	"usdc-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type OrdersHandler struct {
	checkoutService service.CheckoutService
}

func NewOrdersHandler(checkoutService service.CheckoutService) *OrdersHandler {
	return &OrdersHandler{
		checkoutService: checkoutService,
	}
}

// GetRecent lists the latest finalized orders from the local audit log,
// for operators tracing which transaction paid for which order.
func (h *OrdersHandler) GetRecent(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	orders, err := h.checkoutService.RecentOrders(ctx, limit)
	if err != nil {
		log.Printf("recent orders: %v", err)
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load orders"})
	}

	return c.JSON(http.StatusOK, orders)
}
