package handler

import (
	"errors"
	"log"
	"net/http"
	"usdc-storefront/internal/dto"
	"usdc-storefront/internal/repository"
	"usdc-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := h.checkoutService.CreateReservation(ctx, &req)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) Finalize(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	order, err := h.checkoutService.Finalize(ctx, req.SessionID, req.TransactionHash)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(http.StatusOK, dto.FinalizeResponse{
		Success: true,
		Order:   order,
	})
}

// Failures the buyer caused (or can act on) keep their sentinel text with a
// 400; anything else is collapsed into a generic message so internal detail
// never reaches the client.
var buyerFacing = []error{
	service.ErrInvalidSession,
	service.ErrDuplicateTransaction,
	service.ErrTxNotFound,
	service.ErrWrongContract,
	service.ErrTxFailed,
	service.ErrNotTransfer,
	service.ErrInvalidRecipient,
	service.ErrAmountMismatch,
	service.ErrOrderCreation,
}

func checkoutError(c echo.Context, err error) error {
	for _, sentinel := range buyerFacing {
		if errors.Is(err, sentinel) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: sentinel.Error()})
		}
	}
	if errors.Is(err, repository.ErrStorageUnavailable) {
		log.Printf("checkout storage failure: %v", err)
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "service temporarily unavailable"})
	}
	log.Printf("checkout failure: %v", err)
	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to process checkout"})
}
