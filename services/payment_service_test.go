package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sahilchouksey/course-market-api/model"
	"github.com/sahilchouksey/course-market-api/utils/razorpay"
)

const testKeySecret = "test_key_secret"

func newTestPaymentService(store *memStore, cfg PaymentConfig) *PaymentService {
	if cfg.KeySecret == "" {
		cfg.KeySecret = testKeySecret
	}
	repos := store.repositories()
	return NewPaymentService(repos, &memTransactor{s: store}, NewEnrollmentService(), cfg)
}

func seedUserAndCourse(store *memStore) (*model.User, *model.Course) {
	user := store.addUser(model.User{Email: "student@example.com", Name: "Student", Role: model.RoleStudent})
	course := store.addCourse(model.Course{ID: 10, InstructorID: 99, Title: "Deep Learning", Price: 499.00})
	return user, course
}

func signFor(orderID, paymentID, secret string) string {
	return razorpay.ComputeSignature(orderID, paymentID, secret)
}

func TestCreateOrderNewAndDedup(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	order, reused, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if reused {
		t.Fatal("first order reported as reused")
	}
	if order.Status != model.OrderStatusCreated {
		t.Fatalf("status = %q, want created", order.Status)
	}
	if order.Amount != 499.00 {
		t.Fatalf("amount = %v, want course price 499.00", order.Amount)
	}
	if order.Currency != "INR" {
		t.Fatalf("currency = %q, want INR", order.Currency)
	}
	if order.ProviderOrderID == "" {
		t.Fatal("provider order id not generated")
	}

	again, reused, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	if err != nil {
		t.Fatalf("CreateOrder retry: %v", err)
	}
	if !reused {
		t.Fatal("retry did not reuse the in-flight order")
	}
	if again.ID != order.ID || again.ProviderOrderID != order.ProviderOrderID {
		t.Fatalf("retry returned a different order: %d vs %d", again.ID, order.ID)
	}
	if len(store.orders) != 1 {
		t.Fatalf("orders in store = %d, want 1", len(store.orders))
	}
}

func TestCreateOrderAmountOverrideAndValidation(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	amount := 299.50
	order, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID, Amount: &amount})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Amount != 299.50 {
		t.Fatalf("amount = %v, want 299.50", order.Amount)
	}

	bad := -5.0
	if _, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: 10, Amount: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative amount err = %v, want ErrValidation", err)
	}

	subPaise := 10.999
	if _, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: 10, Amount: &subPaise}); !errors.Is(err, ErrValidation) {
		t.Fatalf("sub-paise amount err = %v, want ErrValidation", err)
	}
}

func TestCreateOrderMissingUserOrCourse(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	if _, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: 404, CourseID: course.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}
	if _, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: 404}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing course err = %v, want ErrNotFound", err)
	}
	if len(store.orders) != 0 {
		t.Fatalf("orders created on failed input: %d", len(store.orders))
	}
}

func TestVerifyPaymentHappyPath(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	order, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	in := ReconcileInput{
		ProviderOrderID:   order.ProviderOrderID,
		ProviderPaymentID: "pay_123",
	}
	in.Signature = signFor(in.ProviderOrderID, in.ProviderPaymentID, testKeySecret)

	res, err := svc.VerifyPayment(context.Background(), in, &user.ID)
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if res.Order.Status != model.OrderStatusPaid {
		t.Fatalf("order status = %q, want paid", res.Order.Status)
	}
	if res.Payment == nil || res.Payment.Status != model.PaymentStatusCompleted {
		t.Fatalf("payment = %+v, want completed", res.Payment)
	}
	if res.Payment.Method != model.PaymentMethodRazorpay {
		t.Fatalf("payment method = %q, want razorpay", res.Payment.Method)
	}
	if res.Payment.ProviderPaymentID == nil || *res.Payment.ProviderPaymentID != "pay_123" {
		t.Fatal("provider payment id not stamped")
	}
	if res.Payment.Amount != order.Amount {
		t.Fatalf("payment amount = %v, want order amount %v", res.Payment.Amount, order.Amount)
	}
	if res.Enrollment == nil || res.Enrollment.Status != model.EnrollmentStatusActive {
		t.Fatalf("enrollment = %+v, want active", res.Enrollment)
	}
	if res.Enrollment.UserID != user.ID || res.Enrollment.CourseID != course.ID {
		t.Fatal("enrollment keyed to wrong user/course")
	}
}

func TestVerifyPaymentIdempotentReplay(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_123"}
	in.Signature = signFor(in.ProviderOrderID, in.ProviderPaymentID, testKeySecret)

	first, err := svc.VerifyPayment(context.Background(), in, &user.ID)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := svc.VerifyPayment(context.Background(), in, &user.ID)
	if err != nil {
		t.Fatalf("replay verify: %v", err)
	}
	if second.Payment.ID != first.Payment.ID {
		t.Fatalf("replay created a new payment row: %d vs %d", second.Payment.ID, first.Payment.ID)
	}
	if second.Enrollment.ID != first.Enrollment.ID {
		t.Fatalf("replay created a new enrollment: %d vs %d", second.Enrollment.ID, first.Enrollment.ID)
	}
	if len(store.payments) != 1 {
		t.Fatalf("payments in store = %d, want 1", len(store.payments))
	}
	if len(store.enrollments) != 1 {
		t.Fatalf("enrollments in store = %d, want 1", len(store.enrollments))
	}

	// A replay with a garbage signature must not disturb a paid order.
	in.Signature = "deadbeef"
	replayed, err := svc.VerifyPayment(context.Background(), in, &user.ID)
	if err != nil {
		t.Fatalf("paid-order replay with bad signature: %v", err)
	}
	if replayed.Order.Status != model.OrderStatusPaid {
		t.Fatalf("paid order status changed to %q", replayed.Order.Status)
	}
}

func TestVerifyPaymentInvalidSignaturePersistsFailure(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{
		ProviderOrderID:   order.ProviderOrderID,
		ProviderPaymentID: "pay_123",
		Signature:         "not-a-real-signature",
	}

	if _, err := svc.VerifyPayment(context.Background(), in, &user.ID); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}

	// The failure outlives the rejected request.
	stored := store.orders[order.ID]
	if stored.Status != model.OrderStatusFailed {
		t.Fatalf("stored order status = %q, want failed", stored.Status)
	}
	if len(store.enrollments) != 0 {
		t.Fatal("invalid signature granted an enrollment")
	}

	// The order is now terminal: even a correct signature is refused.
	in.Signature = signFor(in.ProviderOrderID, in.ProviderPaymentID, testKeySecret)
	if _, err := svc.VerifyPayment(context.Background(), in, &user.ID); !errors.Is(err, ErrInvalidOrderState) {
		t.Fatalf("err after failure = %v, want ErrInvalidOrderState", err)
	}
	if store.orders[order.ID].Status != model.OrderStatusFailed {
		t.Fatal("terminal order mutated")
	}
}

func TestVerifyPaymentInvalidSignatureMarksExistingPaymentFailed(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})

	// Seed a pending payment row against the order, as a client that
	// started checkout would leave behind.
	pending := &model.Payment{
		UserID:   user.ID,
		CourseID: course.ID,
		OrderID:  &order.ID,
		Amount:   order.Amount,
		Status:   model.PaymentStatusPending,
		Method:   model.PaymentMethodRazorpay,
	}
	if err := store.repositories().Payments.Create(context.Background(), pending); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_bad", Signature: "bogus"}
	if _, err := svc.VerifyPayment(context.Background(), in, &user.ID); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}

	stored := store.payments[pending.ID]
	if stored.Status != model.PaymentStatusFailed {
		t.Fatalf("payment status = %q, want failed", stored.Status)
	}
	if stored.ProviderPaymentID == nil || *stored.ProviderPaymentID != "pay_bad" {
		t.Fatal("failed payment not stamped with the offered payment id")
	}
}

func TestVerifyPaymentRequiresSignature(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_123"}

	if _, err := svc.VerifyPayment(context.Background(), in, &user.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	// Missing signature is a malformed request, not a forgery: no mutation.
	if store.orders[order.ID].Status != model.OrderStatusCreated {
		t.Fatal("missing signature mutated the order")
	}
}

func TestVerifyPaymentForbiddenForOtherUser(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	other := store.addUser(model.User{Email: "other@example.com", Name: "Other", Role: model.RoleStudent})
	svc := newTestPaymentService(store, PaymentConfig{})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_123"}
	in.Signature = signFor(in.ProviderOrderID, in.ProviderPaymentID, testKeySecret)

	if _, err := svc.VerifyPayment(context.Background(), in, &other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if store.orders[order.ID].Status != model.OrderStatusCreated {
		t.Fatal("forbidden caller mutated the order")
	}
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	store := newMemStore()
	seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	in := ReconcileInput{ProviderOrderID: "order_missing", ProviderPaymentID: "pay_123", Signature: "x"}
	if _, err := svc.VerifyPayment(context.Background(), in, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHandleWebhookValidSignature(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{WebhookSecret: "hook_secret", RequireWebhookSignature: true})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_wh"}
	in.Signature = signFor(in.ProviderOrderID, in.ProviderPaymentID, "hook_secret")

	res, err := svc.HandleWebhook(context.Background(), in, []byte(`{"event":"payment.captured"}`))
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if res.Order.Status != model.OrderStatusPaid {
		t.Fatalf("order status = %q, want paid", res.Order.Status)
	}

	events := store.webhookEvents()
	if len(events) != 1 {
		t.Fatalf("webhook audit rows = %d, want 1", len(events))
	}
	if events[0].Outcome != "paid" {
		t.Fatalf("audit outcome = %q, want paid", events[0].Outcome)
	}
	if events[0].ProviderOrderID != order.ProviderOrderID {
		t.Fatal("audit row not keyed to the order")
	}
}

func TestHandleWebhookMissingSignature(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		store := newMemStore()
		user, course := seedUserAndCourse(store)
		svc := newTestPaymentService(store, PaymentConfig{RequireWebhookSignature: true})

		order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
		in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_wh"}

		if _, err := svc.HandleWebhook(context.Background(), in, nil); !errors.Is(err, ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
		if store.orders[order.ID].Status != model.OrderStatusCreated {
			t.Fatal("unsigned webhook mutated the order")
		}
	})

	t.Run("trusted by config", func(t *testing.T) {
		store := newMemStore()
		user, course := seedUserAndCourse(store)
		svc := newTestPaymentService(store, PaymentConfig{RequireWebhookSignature: false})

		order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
		in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_wh"}

		res, err := svc.HandleWebhook(context.Background(), in, nil)
		if err != nil {
			t.Fatalf("HandleWebhook: %v", err)
		}
		if res.Order.Status != model.OrderStatusPaid {
			t.Fatalf("order status = %q, want paid", res.Order.Status)
		}
	})
}

func TestHandleWebhookInvalidSignatureAudited(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{RequireWebhookSignature: true})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_wh", Signature: "forged"}

	if _, err := svc.HandleWebhook(context.Background(), in, []byte(`{}`)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
	if store.orders[order.ID].Status != model.OrderStatusFailed {
		t.Fatal("forged webhook did not fail the order")
	}

	events := store.webhookEvents()
	if len(events) != 1 || events[0].Outcome != "failed" {
		t.Fatalf("audit rows = %+v, want one failed row", events)
	}
}

func TestWebhookThenVerifyReplay(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{RequireWebhookSignature: true})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_xy"}
	in.Signature = signFor(in.ProviderOrderID, in.ProviderPaymentID, testKeySecret)

	if _, err := svc.HandleWebhook(context.Background(), in, nil); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	res, err := svc.VerifyPayment(context.Background(), in, &user.ID)
	if err != nil {
		t.Fatalf("verify after webhook: %v", err)
	}
	if res.Order.Status != model.OrderStatusPaid {
		t.Fatalf("order status = %q, want paid", res.Order.Status)
	}
	if len(store.payments) != 1 || len(store.enrollments) != 1 {
		t.Fatalf("payments=%d enrollments=%d, want 1 and 1", len(store.payments), len(store.enrollments))
	}
}

func TestReconcileConcurrentCallers(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{RequireWebhookSignature: true})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_race"}
	in.Signature = signFor(in.ProviderOrderID, in.ProviderPaymentID, testKeySecret)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = svc.VerifyPayment(context.Background(), in, &user.ID)
			} else {
				_, errs[i] = svc.HandleWebhook(context.Background(), in, nil)
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	if got := store.orders[order.ID].Status; got != model.OrderStatusPaid {
		t.Fatalf("order status = %q, want paid", got)
	}
	if len(store.payments) != 1 {
		t.Fatalf("payments = %d, want exactly 1", len(store.payments))
	}
	if len(store.enrollments) != 1 {
		t.Fatalf("enrollments = %d, want exactly 1", len(store.enrollments))
	}
}

func TestRecordManualPaymentExistingUser(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	admin := store.addUser(model.User{Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin})
	svc := newTestPaymentService(store, PaymentConfig{})

	res, err := svc.RecordManualPayment(context.Background(), ManualPaymentInput{
		UserID:           &user.ID,
		CourseID:         course.ID,
		Notes:            "paid by bank transfer",
		RecordedByUserID: admin.ID,
	})
	if err != nil {
		t.Fatalf("RecordManualPayment: %v", err)
	}
	if res.Order.Status != model.OrderStatusPaid {
		t.Fatalf("order status = %q, want paid", res.Order.Status)
	}
	if res.Payment.Method != model.PaymentMethodManual {
		t.Fatalf("payment method = %q, want manual", res.Payment.Method)
	}
	if res.Payment.Status != model.PaymentStatusCompleted {
		t.Fatalf("payment status = %q, want completed", res.Payment.Status)
	}
	if res.Payment.RecordedByUserID == nil || *res.Payment.RecordedByUserID != admin.ID {
		t.Fatal("recording admin not stamped on the payment")
	}
	if res.Payment.Notes == nil || *res.Payment.Notes != "paid by bank transfer" {
		t.Fatal("notes not recorded")
	}
	if res.Order.Amount != course.Price {
		t.Fatalf("amount = %v, want course price", res.Order.Amount)
	}
	if res.Enrollment == nil || res.Enrollment.UserID != user.ID {
		t.Fatal("enrollment missing or wrong user")
	}
}

func TestRecordManualPaymentCreatesUserByEmail(t *testing.T) {
	store := newMemStore()
	_, course := seedUserAndCourse(store)
	admin := store.addUser(model.User{Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin})
	svc := newTestPaymentService(store, PaymentConfig{})

	res, err := svc.RecordManualPayment(context.Background(), ManualPaymentInput{
		Email:            "walkin@example.com",
		Name:             "Walk In",
		CourseID:         course.ID,
		RecordedByUserID: admin.ID,
	})
	if err != nil {
		t.Fatalf("RecordManualPayment: %v", err)
	}

	repos := store.repositories()
	created, err := repos.Users.GetByEmail(context.Background(), "walkin@example.com")
	if err != nil {
		t.Fatalf("created user not found: %v", err)
	}
	if created.Role != model.RoleStudent {
		t.Fatalf("created user role = %q, want student", created.Role)
	}
	if created.PasswordHash == "" {
		t.Fatal("created user has no password hash")
	}
	if res.Payment.UserID != created.ID {
		t.Fatal("payment not keyed to the created user")
	}

	// A second manual record for the same email reuses the user and the
	// enrollment, but records an independent order/payment pair.
	res2, err := svc.RecordManualPayment(context.Background(), ManualPaymentInput{
		Email:            "walkin@example.com",
		Name:             "Walk In",
		CourseID:         course.ID,
		RecordedByUserID: admin.ID,
	})
	if err != nil {
		t.Fatalf("second RecordManualPayment: %v", err)
	}
	if res2.Payment.UserID != created.ID {
		t.Fatal("second record created a duplicate user")
	}
	if res2.Order.ID == res.Order.ID || res2.Payment.ID == res.Payment.ID {
		t.Fatal("second record reused the first order/payment pair")
	}
	if res2.Enrollment.ID != res.Enrollment.ID {
		t.Fatal("second record duplicated the enrollment")
	}
}

func TestRecordManualPaymentValidation(t *testing.T) {
	store := newMemStore()
	_, course := seedUserAndCourse(store)
	svc := newTestPaymentService(store, PaymentConfig{})

	missing := uint(404)
	if _, err := svc.RecordManualPayment(context.Background(), ManualPaymentInput{UserID: &missing, CourseID: course.ID, RecordedByUserID: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}

	if _, err := svc.RecordManualPayment(context.Background(), ManualPaymentInput{Email: "not-an-email", Name: "X", CourseID: course.ID, RecordedByUserID: 1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad email err = %v, want ErrValidation", err)
	}

	if _, err := svc.RecordManualPayment(context.Background(), ManualPaymentInput{Email: "ok@example.com", CourseID: course.ID, RecordedByUserID: 1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing name err = %v, want ErrValidation", err)
	}

	// A failed record must leave nothing behind, including the user row.
	if _, err := svc.RecordManualPayment(context.Background(), ManualPaymentInput{Email: "gone@example.com", Name: "Gone", CourseID: 404, RecordedByUserID: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing course err = %v, want ErrNotFound", err)
	}
	if _, err := store.repositories().Users.GetByEmail(context.Background(), "gone@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatal("user created inside a rolled-back transaction survived")
	}
}

func TestListPayments(t *testing.T) {
	store := newMemStore()
	user, course := seedUserAndCourse(store)
	admin := store.addUser(model.User{Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin})
	svc := newTestPaymentService(store, PaymentConfig{})

	order, _, _ := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, CourseID: course.ID})
	in := ReconcileInput{ProviderOrderID: order.ProviderOrderID, ProviderPaymentID: "pay_1"}
	in.Signature = signFor(in.ProviderOrderID, in.ProviderPaymentID, testKeySecret)
	if _, err := svc.VerifyPayment(context.Background(), in, &user.ID); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := svc.RecordManualPayment(context.Background(), ManualPaymentInput{UserID: &user.ID, CourseID: course.ID, RecordedByUserID: admin.ID}); err != nil {
		t.Fatalf("manual: %v", err)
	}

	payments, err := svc.ListPayments(context.Background())
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(payments))
	}
	if payments[0].ID < payments[1].ID {
		t.Fatal("payments not newest first")
	}
}
