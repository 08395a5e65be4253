package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sahilchouksey/course-market-api/model"
	"github.com/sahilchouksey/course-market-api/utils/auth"
	"github.com/sahilchouksey/course-market-api/utils/razorpay"
	"github.com/sahilchouksey/course-market-api/utils/validation"
	"gorm.io/datatypes"
)

// PaymentConfig holds the provider credentials and webhook policy.
type PaymentConfig struct {
	KeyID     string
	KeySecret string
	// WebhookSecret overrides KeySecret for webhook signature checks when
	// set. The signature contract is identical on both paths.
	WebhookSecret string
	// RequireWebhookSignature rejects unsigned webhook deliveries. Some
	// provider integrations omit the signature header, but trusting an
	// unsigned payload lets anyone flip order state, so the default is
	// true and trusting unsigned deliveries is an explicit
	// configuration choice.
	RequireWebhookSignature bool
}

func (c PaymentConfig) webhookSecret() string {
	if c.WebhookSecret != "" {
		return c.WebhookSecret
	}
	return c.KeySecret
}

// PaymentService reconciles provider payment confirmations with local
// order/payment state exactly once and drives enrollment granting. It is
// the only writer of payment_orders and payments rows.
type PaymentService struct {
	repos       *Repositories
	tx          Transactor
	enrollments *EnrollmentService
	cfg         PaymentConfig
}

// NewPaymentService creates a new payment service
func NewPaymentService(repos *Repositories, tx Transactor, enrollments *EnrollmentService, cfg PaymentConfig) *PaymentService {
	return &PaymentService{
		repos:       repos,
		tx:          tx,
		enrollments: enrollments,
		cfg:         cfg,
	}
}

// KeyID returns the publishable provider key for checkout clients.
func (s *PaymentService) KeyID() string {
	return s.cfg.KeyID
}

// CreateOrderInput carries a checkout request.
type CreateOrderInput struct {
	UserID   uint
	CourseID uint
	// Amount overrides the course list price when non-nil.
	Amount   *float64
	Currency string
	// ProviderOrderID is honored when the caller already holds a
	// provider-issued id; otherwise a fresh one is generated.
	ProviderOrderID string
}

// CreateOrder records a payment intent for a course. An in-flight created
// order for the same user/course pair is reused rather than duplicated, so
// abandoning a checkout and retrying does not accumulate orders.
// The returned bool is true when an existing order was reused.
func (s *PaymentService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.PaymentOrder, bool, error) {
	var (
		order    *model.PaymentOrder
		existing bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, r *Repositories) error {
		user, err := r.Users.GetByID(ctx, in.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("user %d: %w", in.UserID, ErrNotFound)
			}
			return err
		}

		course, err := r.Courses.GetByID(ctx, in.CourseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("course %d: %w", in.CourseID, ErrNotFound)
			}
			return err
		}

		amount := course.Price
		if in.Amount != nil {
			amount, err = validation.NormalizeAmount(*in.Amount)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
		}

		inFlight, err := r.Orders.FindCreatedByUserAndCourse(ctx, user.ID, course.ID)
		if err == nil {
			order = inFlight
			existing = true
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		providerOrderID := validation.SanitizeString(in.ProviderOrderID)
		if providerOrderID == "" {
			providerOrderID = razorpay.GenerateOrderID()
		}

		order = &model.PaymentOrder{
			ProviderOrderID: providerOrderID,
			UserID:          user.ID,
			CourseID:        course.ID,
			Amount:          amount,
			Currency:        validation.NormalizeCurrency(in.Currency),
			Status:          model.OrderStatusCreated,
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return fmt.Errorf("%w: provider order id already exists", ErrValidation)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, existing, nil
}

// ReconcileInput carries a provider payment confirmation, from either the
// client verify callback or the provider webhook.
type ReconcileInput struct {
	ProviderOrderID   string
	ProviderPaymentID string
	Signature         string
}

// ReconcileResult is the serialized outcome of a reconciliation step.
type ReconcileResult struct {
	Order      *model.PaymentOrder
	Payment    *model.Payment
	Enrollment *model.Enrollment
}

// VerifyPayment applies a client-initiated payment confirmation. The
// signature field is mandatory. When callerUserID is non-nil it must match
// the order's owner.
func (s *PaymentService) VerifyPayment(ctx context.Context, in ReconcileInput, callerUserID *uint) (*ReconcileResult, error) {
	if in.Signature == "" {
		return nil, fmt.Errorf("%w: signature is required", ErrValidation)
	}
	return s.reconcile(ctx, in, callerUserID, s.cfg.KeySecret, true)
}

// HandleWebhook applies a provider-initiated confirmation. There is no
// caller identity; trust rests on the signature alone. Every delivery is
// recorded in the webhook audit table regardless of outcome.
func (s *PaymentService) HandleWebhook(ctx context.Context, in ReconcileInput, rawPayload []byte) (*ReconcileResult, error) {
	result, err := s.reconcile(ctx, in, nil, s.cfg.webhookSecret(), s.cfg.RequireWebhookSignature)
	s.recordWebhookEvent(ctx, in, rawPayload, result, err)
	return result, err
}

// reconcile is the single state machine behind verify and webhook:
//
//	created --(signature valid)--> paid   (+ payment completed, enrollment)
//	created --(signature invalid)--> failed (+ payment failed, durable)
//	paid    --(any call)--> paid   (replay of existing result)
//	failed  --(any call)--> error  (terminal, no mutation)
//
// The order row is locked for the duration of the transaction, so of two
// racing callers exactly one performs the transition and the other
// observes the terminal state.
func (s *PaymentService) reconcile(ctx context.Context, in ReconcileInput, callerUserID *uint, secret string, requireSignature bool) (*ReconcileResult, error) {
	if in.ProviderOrderID == "" || in.ProviderPaymentID == "" {
		return nil, fmt.Errorf("%w: order id and payment id are required", ErrValidation)
	}

	var (
		result       *ReconcileResult
		signatureErr error
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, r *Repositories) error {
		order, err := r.Orders.GetByProviderOrderIDForUpdate(ctx, in.ProviderOrderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("order %s: %w", in.ProviderOrderID, ErrNotFound)
			}
			return err
		}

		if callerUserID != nil && *callerUserID != order.UserID {
			return ErrForbidden
		}

		switch order.Status {
		case model.OrderStatusFailed:
			return ErrInvalidOrderState

		case model.OrderStatusPaid:
			// Already reconciled; replay the existing result so repeated
			// verify/webhook calls in any order stay side-effect free.
			enrollment, err := s.enrollments.EnsureEnrollment(ctx, r, order.UserID, order.CourseID)
			if err != nil {
				return err
			}
			payment, err := r.Payments.GetLatestByOrderID(ctx, order.ID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			result = &ReconcileResult{Order: order, Payment: payment, Enrollment: enrollment}
			return nil
		}

		valid := false
		switch {
		case in.Signature != "":
			valid = razorpay.IsValidSignature(in.ProviderOrderID, in.ProviderPaymentID, in.Signature, secret)
		case !requireSignature:
			// Unsigned webhook trusted by explicit configuration.
			valid = true
		default:
			return fmt.Errorf("%w: signature is required", ErrValidation)
		}

		if !valid {
			// Record the failure durably: the failed transition commits
			// even though the request itself is rejected.
			order.Status = model.OrderStatusFailed
			if err := r.Orders.Update(ctx, order); err != nil {
				return err
			}
			payment, err := r.Payments.GetLatestByOrderID(ctx, order.ID)
			if err == nil {
				payment.Status = model.PaymentStatusFailed
				payment.ProviderPaymentID = &in.ProviderPaymentID
				if err := r.Payments.Update(ctx, payment); err != nil {
					return err
				}
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
			result = &ReconcileResult{Order: order, Payment: payment}
			signatureErr = ErrInvalidSignature
			return nil
		}

		payment, err := r.Payments.GetLatestByOrderID(ctx, order.ID)
		if errors.Is(err, ErrNotFound) {
			payment = &model.Payment{
				UserID:   order.UserID,
				CourseID: order.CourseID,
				OrderID:  &order.ID,
				Amount:   order.Amount,
				Method:   model.PaymentMethodRazorpay,
			}
			payment.Status = model.PaymentStatusCompleted
			payment.ProviderPaymentID = &in.ProviderPaymentID
			if err := r.Payments.Create(ctx, payment); err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			payment.Status = model.PaymentStatusCompleted
			payment.ProviderPaymentID = &in.ProviderPaymentID
			if err := r.Payments.Update(ctx, payment); err != nil {
				return err
			}
		}

		order.Status = model.OrderStatusPaid
		if err := r.Orders.Update(ctx, order); err != nil {
			return err
		}

		enrollment, err := s.enrollments.EnsureEnrollment(ctx, r, order.UserID, order.CourseID)
		if err != nil {
			return err
		}

		result = &ReconcileResult{Order: order, Payment: payment, Enrollment: enrollment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if signatureErr != nil {
		return result, signatureErr
	}
	return result, nil
}

// recordWebhookEvent appends an audit row for a webhook delivery.
// Best effort: audit failures never affect the reconciliation outcome.
func (s *PaymentService) recordWebhookEvent(ctx context.Context, in ReconcileInput, rawPayload []byte, result *ReconcileResult, reconcileErr error) {
	outcome := "paid"
	switch {
	case errors.Is(reconcileErr, ErrInvalidSignature):
		outcome = "failed"
	case errors.Is(reconcileErr, ErrNotFound):
		outcome = "not_found"
	case reconcileErr != nil:
		outcome = "rejected"
	case result != nil && result.Order != nil && result.Order.Status == model.OrderStatusFailed:
		outcome = "failed"
	}

	event := &model.PaymentWebhookEvent{
		ID:                uuid.New().String(),
		ProviderOrderID:   in.ProviderOrderID,
		ProviderPaymentID: in.ProviderPaymentID,
		Outcome:           outcome,
		Payload:           datatypes.JSON(rawPayload),
	}
	_ = s.repos.WebhookEvents.Create(ctx, event)
}

// ManualPaymentInput carries an admin-recorded offline payment.
type ManualPaymentInput struct {
	// Either UserID or Email+Name identifies the paying user. A new user
	// is created for an unknown email, never duplicated for a known one.
	UserID            *uint
	Email             string
	Name              string
	CourseID          uint
	Amount            *float64
	Currency          string
	ProviderOrderID   string
	ProviderPaymentID string
	Notes             string
	RecordedByUserID  uint
}

// RecordManualPayment records an offline settlement: an order born paid, a
// completed manual payment, and the enrollment, in one transaction. Any
// failure rolls back every write including a just-created user. Manual
// records deliberately do not dedupe against earlier manual pairs for the
// same user/course (installments are allowed); the enrollment row is still
// reused.
func (s *PaymentService) RecordManualPayment(ctx context.Context, in ManualPaymentInput) (*ReconcileResult, error) {
	var result *ReconcileResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, r *Repositories) error {
		user, err := s.resolveManualUser(ctx, r, in)
		if err != nil {
			return err
		}

		course, err := r.Courses.GetByID(ctx, in.CourseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("course %d: %w", in.CourseID, ErrNotFound)
			}
			return err
		}

		amount := course.Price
		if in.Amount != nil {
			amount, err = validation.NormalizeAmount(*in.Amount)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
		}

		providerOrderID := validation.SanitizeString(in.ProviderOrderID)
		if providerOrderID == "" {
			providerOrderID = razorpay.GenerateToken("manual-order")
		}
		providerPaymentID := validation.SanitizeString(in.ProviderPaymentID)
		if providerPaymentID == "" {
			providerPaymentID = razorpay.GenerateToken("manual-pay")
		}

		order := &model.PaymentOrder{
			ProviderOrderID: providerOrderID,
			UserID:          user.ID,
			CourseID:        course.ID,
			Amount:          amount,
			Currency:        validation.NormalizeCurrency(in.Currency),
			Status:          model.OrderStatusPaid,
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return fmt.Errorf("%w: provider order id already exists", ErrValidation)
			}
			return err
		}

		recordedBy := in.RecordedByUserID
		payment := &model.Payment{
			UserID:            user.ID,
			CourseID:          course.ID,
			OrderID:           &order.ID,
			Amount:            amount,
			Status:            model.PaymentStatusCompleted,
			ProviderPaymentID: &providerPaymentID,
			Method:            model.PaymentMethodManual,
			RecordedByUserID:  &recordedBy,
		}
		if notes := validation.SanitizeString(in.Notes); notes != "" {
			payment.Notes = &notes
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}

		enrollment, err := s.enrollments.EnsureEnrollment(ctx, r, user.ID, course.ID)
		if err != nil {
			return err
		}

		result = &ReconcileResult{Order: order, Payment: payment, Enrollment: enrollment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PaymentService) resolveManualUser(ctx context.Context, r *Repositories, in ManualPaymentInput) (*model.User, error) {
	if in.UserID != nil {
		user, err := r.Users.GetByID(ctx, *in.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("user %d: %w", *in.UserID, ErrNotFound)
			}
			return nil, err
		}
		return user, nil
	}

	email := validation.SanitizeString(in.Email)
	name := validation.SanitizeString(in.Name)
	if !validation.ValidateEmail(email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	user, err := r.Users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Offline payers get an account without a usable password; a random
	// credential keeps the hash column non-empty until they reset it.
	hash, err := hashRandomPassword()
	if err != nil {
		return nil, err
	}
	user = &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if err := r.Users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return r.Users.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}

// ListPayments returns all payments, newest first.
func (s *PaymentService) ListPayments(ctx context.Context) ([]model.Payment, error) {
	return s.repos.Payments.List(ctx)
}

func hashRandomPassword() (string, error) {
	return auth.HashPassword(razorpay.GenerateToken("usr"))
}
