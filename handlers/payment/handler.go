package payment

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/services"
	"github.com/sahilchouksey/course-market-api/utils/response"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// mapServiceError renders a payment service error with the right status.
// Invalid signatures and invalid order states are client errors: the
// request was understood but refused.
func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "This order belongs to another user")
	case errors.Is(err, services.ErrInvalidSignature):
		return response.Error(c, fiber.StatusBadRequest, "Payment signature verification failed", "INVALID_SIGNATURE")
	case errors.Is(err, services.ErrInvalidOrderState):
		return response.Error(c, fiber.StatusBadRequest, "Order has already failed and cannot be paid", "INVALID_ORDER_STATE")
	case errors.Is(err, services.ErrValidation):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Payment processing failed")
	}
}
