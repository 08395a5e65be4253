package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/services"
	"github.com/sahilchouksey/course-market-api/utils/middleware"
	"github.com/sahilchouksey/course-market-api/utils/response"
)

// VerifyRequest is the client-side payment confirmation callback,
// using the provider's checkout field names.
type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	UserID            uint   `json:"user_id"`
}

// Verify reconciles a client-reported payment. The authenticated user, if
// any, must own the order; an anonymous caller may pass user_id for the
// same check.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" {
		return response.BadRequest(c, "razorpay_order_id and razorpay_payment_id are required")
	}

	var callerID *uint
	if authedID, ok := middleware.GetUserID(c); ok {
		callerID = &authedID
	} else if req.UserID != 0 {
		callerID = &req.UserID
	}

	result, err := h.payments.VerifyPayment(c.Context(), services.ReconcileInput{
		ProviderOrderID:   req.RazorpayOrderID,
		ProviderPaymentID: req.RazorpayPaymentID,
		Signature:         req.RazorpaySignature,
	}, callerID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"order":      serializeOrder(result.Order),
		"payment":    serializePayment(result.Payment),
		"enrollment": serializeEnrollment(result.Enrollment),
	})
}
