package database

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/sahilchouksey/course-market-api/model"
	"github.com/sahilchouksey/course-market-api/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pqUniqueViolation = "23505"

// isUniqueViolation recognizes unique-constraint errors from both the
// translated GORM error and a raw lib/pq driver error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return services.ErrNotFound
	case isUniqueViolation(err):
		return services.ErrDuplicate
	default:
		return err
	}
}

// NewRepositories builds the repository bundle on a gorm handle. The same
// constructor serves both the top-level handle and transaction handles,
// which is what lets the Transactor rebind a whole bundle per transaction.
func NewRepositories(db *gorm.DB) *services.Repositories {
	return &services.Repositories{
		Orders:        &orderRepo{db: db},
		Payments:      &paymentRepo{db: db},
		Enrollments:   &enrollmentRepo{db: db},
		Users:         &userRepo{db: db},
		Courses:       &courseRepo{db: db},
		WebhookEvents: &webhookEventRepo{db: db},
	}
}

// GormTransactor runs reconciliation steps inside a database transaction.
type GormTransactor struct {
	db *gorm.DB
}

func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, r *services.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) Create(ctx context.Context, order *model.PaymentOrder) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *orderRepo) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*model.PaymentOrder, error) {
	var order model.PaymentOrder
	err := r.db.WithContext(ctx).
		Where("provider_order_id = ?", providerOrderID).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// GetByProviderOrderIDForUpdate takes a SELECT ... FOR UPDATE row lock,
// held until the surrounding transaction ends. Callers must invoke it
// through a Transactor; on the top-level handle the lock is released
// immediately and provides nothing.
func (r *orderRepo) GetByProviderOrderIDForUpdate(ctx context.Context, providerOrderID string) (*model.PaymentOrder, error) {
	var order model.PaymentOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider_order_id = ?", providerOrderID).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) FindCreatedByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.PaymentOrder, error) {
	var order model.PaymentOrder
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.OrderStatusCreated).
		Order("id DESC").
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) Update(ctx context.Context, order *model.PaymentOrder) error {
	return translate(r.db.WithContext(ctx).Save(order).Error)
}

type paymentRepo struct {
	db *gorm.DB
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepo) GetLatestByOrderID(ctx context.Context, orderID uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id DESC").
		First(&payment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *paymentRepo) Update(ctx context.Context, payment *model.Payment) error {
	return translate(r.db.WithContext(ctx).Save(payment).Error)
}

func (r *paymentRepo) List(ctx context.Context) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, translate(err)
	}
	return payments, nil
}

type enrollmentRepo struct {
	db *gorm.DB
}

func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return translate(r.db.WithContext(ctx).Create(enrollment).Error)
}

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

type courseRepo struct {
	db *gorm.DB
}

func (r *courseRepo) GetByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).First(&course, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

type webhookEventRepo struct {
	db *gorm.DB
}

func (r *webhookEventRepo) Create(ctx context.Context, event *model.PaymentWebhookEvent) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}
