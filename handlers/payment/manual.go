package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/services"
	"github.com/sahilchouksey/course-market-api/utils/middleware"
	"github.com/sahilchouksey/course-market-api/utils/response"
)

// ManualRecordRequest records an offline settlement. Identify the payer
// by user_id, or by email (+name) to create the account on the spot.
type ManualRecordRequest struct {
	UserID            *uint    `json:"user_id"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	CourseID          uint     `json:"course_id" validate:"required"`
	Amount            *float64 `json:"amount"`
	Currency          string   `json:"currency"`
	OrderID           string   `json:"order_id"`
	ProviderPaymentID string   `json:"provider_payment_id"`
	Notes             string   `json:"notes"`
}

// ManualRecord lets an admin record a payment settled outside the
// provider (bank transfer, cash). Admin-only; routed behind RequireAdmin.
func (h *PaymentHandler) ManualRecord(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ManualRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 {
		return response.BadRequest(c, "course_id is required")
	}
	if req.UserID == nil && req.Email == "" {
		return response.BadRequest(c, "user_id or email is required")
	}

	result, err := h.payments.RecordManualPayment(c.Context(), services.ManualPaymentInput{
		UserID:            req.UserID,
		Email:             req.Email,
		Name:              req.Name,
		CourseID:          req.CourseID,
		Amount:            req.Amount,
		Currency:          req.Currency,
		ProviderOrderID:   req.OrderID,
		ProviderPaymentID: req.ProviderPaymentID,
		Notes:             req.Notes,
		RecordedByUserID:  admin.ID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":      serializeOrder(result.Order),
		"payment":    serializePayment(result.Payment),
		"enrollment": serializeEnrollment(result.Enrollment),
	})
}

// ListPayments returns every payment, newest first. Admin-only.
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.payments.ListPayments(c.Context())
	if err != nil {
		return mapServiceError(c, err)
	}

	out := make([]fiber.Map, 0, len(payments))
	for i := range payments {
		out = append(out, serializePayment(&payments[i]))
	}
	return c.JSON(fiber.Map{"payments": out})
}
