package payment

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/services"
	"github.com/sahilchouksey/course-market-api/utils/response"
)

// webhookPayload is the subset of the provider's event envelope we need.
// The signature may ride in the X-Razorpay-Signature header or in the
// payment entity itself.
type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID        string `json:"id"`
				OrderID   string `json:"order_id"`
				Signature string `json:"signature"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`

	// Flat fallback for simple integrations that post the checkout
	// fields directly.
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// Webhook handles provider-initiated payment notifications. Invalid
// signatures and terminal orders answer 400 so the provider surfaces
// the delivery as failed in its dashboard.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	raw := c.Body()

	var payload webhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return response.BadRequest(c, "Invalid webhook payload")
	}

	orderID := payload.Payload.Payment.Entity.OrderID
	paymentID := payload.Payload.Payment.Entity.ID
	signature := payload.Payload.Payment.Entity.Signature
	if orderID == "" {
		orderID = payload.RazorpayOrderID
	}
	if paymentID == "" {
		paymentID = payload.RazorpayPaymentID
	}
	if signature == "" {
		signature = payload.RazorpaySignature
	}
	if signature == "" {
		signature = c.Get("X-Razorpay-Signature")
	}

	result, err := h.payments.HandleWebhook(c.Context(), services.ReconcileInput{
		ProviderOrderID:   orderID,
		ProviderPaymentID: paymentID,
		Signature:         signature,
	}, raw)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":     "ok",
		"order":      serializeOrder(result.Order),
		"payment":    serializePayment(result.Payment),
		"enrollment": serializeEnrollment(result.Enrollment),
	})
}
