package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/services"
	"github.com/sahilchouksey/course-market-api/utils/middleware"
	"github.com/sahilchouksey/course-market-api/utils/response"
)

// CreateOrderRequest starts a checkout for a course. An authenticated
// session wins over the body user_id.
type CreateOrderRequest struct {
	CourseID uint     `json:"course_id" validate:"required"`
	UserID   uint     `json:"user_id"`
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
	OrderID  string   `json:"order_id"`
}

// CreateOrder creates (or returns the in-flight) payment order and hands
// the client the publishable key for checkout.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 {
		return response.BadRequest(c, "course_id is required")
	}

	userID := req.UserID
	if authedID, ok := middleware.GetUserID(c); ok {
		userID = authedID
	}
	if userID == 0 {
		return response.BadRequest(c, "user_id is required")
	}

	order, existing, err := h.payments.CreateOrder(c.Context(), services.CreateOrderInput{
		UserID:          userID,
		CourseID:        req.CourseID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		ProviderOrderID: req.OrderID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	status := fiber.StatusCreated
	if existing {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"order": serializeOrder(order),
		"key":   h.payments.KeyID(),
	})
}
