package model

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentOrder statuses. Failed is terminal; paid orders only ever replay
// their existing result.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment methods
const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodManual   = "manual"
)

// PaymentOrder is a recorded intent to pay for a course, one per checkout
// attempt, keyed by the provider-issued order id.
type PaymentOrder struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ProviderOrderID string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"order_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	CourseID        uint      `gorm:"not null;index" json:"course_id"`
	Amount          float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency        string    `gorm:"type:varchar(10);not null;default:'INR'" json:"currency"`
	Status          string    `gorm:"type:varchar(50);not null;default:'created'" json:"status"` // created, paid, failed
	CreatedAt       time.Time `json:"created_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

// Payment is a settlement record against an order. The reconciliation path
// keeps at most one row per order, updating it in place on retries.
type Payment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	CourseID          uint      `gorm:"not null;index" json:"course_id"`
	OrderID           *uint     `gorm:"index" json:"order_id"` // nil for legacy/manual payments without an order
	Amount            float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status            string    `gorm:"type:varchar(50);not null;default:'pending'" json:"status"` // pending, completed, failed, refunded
	ProviderPaymentID *string   `gorm:"type:varchar(255);index" json:"provider_payment_id"`
	Method            string    `gorm:"type:varchar(50);not null;default:'razorpay'" json:"method"` // razorpay, manual
	Notes             *string   `gorm:"type:text" json:"notes,omitempty"`
	RecordedByUserID  *uint     `json:"recorded_by_user_id,omitempty"` // set only for manual records
	CreatedAt         time.Time `json:"created_at"`

	// Relationships
	User   User          `gorm:"foreignKey:UserID" json:"-"`
	Course Course        `gorm:"foreignKey:CourseID" json:"-"`
	Order  *PaymentOrder `gorm:"foreignKey:OrderID" json:"-"`
}

// PaymentWebhookEvent is an append-only audit record of provider webhook
// deliveries, stored with the raw payload for later inspection.
type PaymentWebhookEvent struct {
	ID                string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProviderOrderID   string         `gorm:"type:varchar(255);index" json:"provider_order_id"`
	ProviderPaymentID string         `gorm:"type:varchar(255)" json:"provider_payment_id"`
	Outcome           string         `gorm:"type:varchar(50);not null" json:"outcome"` // paid, failed, rejected, not_found
	Payload           datatypes.JSON `json:"payload"`
	CreatedAt         time.Time      `json:"created_at"`
}
