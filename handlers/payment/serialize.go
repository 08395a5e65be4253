package payment

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/model"
)

// Amounts go over the wire as fixed two-decimal strings ("499.00") so
// clients never see float artifacts.
func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func serializeOrder(order *model.PaymentOrder) fiber.Map {
	if order == nil {
		return nil
	}
	return fiber.Map{
		"id":        order.ID,
		"order_id":  order.ProviderOrderID,
		"user_id":   order.UserID,
		"course_id": order.CourseID,
		"amount":    formatAmount(order.Amount),
		"currency":  order.Currency,
		"status":    order.Status,
	}
}

func serializePayment(payment *model.Payment) fiber.Map {
	if payment == nil {
		return nil
	}
	m := fiber.Map{
		"id":        payment.ID,
		"user_id":   payment.UserID,
		"course_id": payment.CourseID,
		"amount":    formatAmount(payment.Amount),
		"status":    payment.Status,
		"method":    payment.Method,
	}
	if payment.OrderID != nil {
		m["order_id"] = *payment.OrderID
	}
	if payment.ProviderPaymentID != nil {
		m["provider_payment_id"] = *payment.ProviderPaymentID
	}
	if payment.RecordedByUserID != nil {
		m["recorded_by_user_id"] = *payment.RecordedByUserID
	}
	if payment.Notes != nil {
		m["notes"] = *payment.Notes
	}
	return m
}

func serializeEnrollment(enrollment *model.Enrollment) fiber.Map {
	if enrollment == nil {
		return nil
	}
	return fiber.Map{
		"id":        enrollment.ID,
		"user_id":   enrollment.UserID,
		"course_id": enrollment.CourseID,
		"status":    enrollment.Status,
	}
}
