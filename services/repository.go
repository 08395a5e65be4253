package services

import (
	"context"

	"github.com/sahilchouksey/course-market-api/model"
)

// OrderRepository persists payment orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.PaymentOrder) error
	// GetByProviderOrderID returns ErrNotFound when absent.
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*model.PaymentOrder, error)
	// GetByProviderOrderIDForUpdate additionally takes an exclusive row
	// lock, held until the surrounding transaction commits. This is the
	// mutual-exclusion boundary that serializes concurrent verify and
	// webhook calls for the same order.
	GetByProviderOrderIDForUpdate(ctx context.Context, providerOrderID string) (*model.PaymentOrder, error)
	// FindCreatedByUserAndCourse returns the in-flight created-status
	// order for a user/course pair, or ErrNotFound.
	FindCreatedByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.PaymentOrder, error)
	Update(ctx context.Context, order *model.PaymentOrder) error
}

// PaymentRepository persists settlement records.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	// GetLatestByOrderID returns the most recent payment for an order, or
	// ErrNotFound when the order has none yet.
	GetLatestByOrderID(ctx context.Context, orderID uint) (*model.Payment, error)
	Update(ctx context.Context, payment *model.Payment) error
	List(ctx context.Context) ([]model.Payment, error)
}

// EnrollmentRepository persists enrollments. Create must surface
// ErrDuplicate on a (user, course) uniqueness violation so the granter can
// re-read the winning row.
type EnrollmentRepository interface {
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.Enrollment, error)
	Create(ctx context.Context, enrollment *model.Enrollment) error
}

// UserRepository resolves and creates users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// CourseRepository resolves courses.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Course, error)
}

// WebhookEventRepository appends webhook delivery audit records.
type WebhookEventRepository interface {
	Create(ctx context.Context, event *model.PaymentWebhookEvent) error
}

// Repositories bundles the persistence interfaces the payment flow needs.
// A Transactor hands out a transaction-bound set; the top-level set runs
// each call in its own implicit transaction.
type Repositories struct {
	Orders        OrderRepository
	Payments      PaymentRepository
	Enrollments   EnrollmentRepository
	Users         UserRepository
	Courses       CourseRepository
	WebhookEvents WebhookEventRepository
}

// Transactor runs fn against a repository set bound to a single database
// transaction. Returning an error rolls back everything fn wrote.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error
}
