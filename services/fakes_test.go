package services

import (
	"context"
	"sync"

	"github.com/sahilchouksey/course-market-api/model"
)

// memStore is an in-memory stand-in for the database used by the service
// tests. A single mutex serializes transactions, which mirrors the
// row-lock guarantee the real store provides per order.
type memStore struct {
	mu        sync.Mutex
	webhookMu sync.Mutex

	users       map[uint]*model.User
	courses     map[uint]*model.Course
	orders      map[uint]*model.PaymentOrder
	payments    map[uint]*model.Payment
	enrollments map[uint]*model.Enrollment
	webhooks    []*model.PaymentWebhookEvent

	nextUserID       uint
	nextOrderID      uint
	nextPaymentID    uint
	nextEnrollmentID uint
}

func newMemStore() *memStore {
	return &memStore{
		users:            make(map[uint]*model.User),
		courses:          make(map[uint]*model.Course),
		orders:           make(map[uint]*model.PaymentOrder),
		payments:         make(map[uint]*model.Payment),
		enrollments:      make(map[uint]*model.Enrollment),
		nextUserID:       1,
		nextOrderID:      1,
		nextPaymentID:    1,
		nextEnrollmentID: 1,
	}
}

func (m *memStore) addUser(u model.User) *model.User {
	if u.ID == 0 {
		u.ID = m.nextUserID
		m.nextUserID++
	} else if u.ID >= m.nextUserID {
		m.nextUserID = u.ID + 1
	}
	cp := u
	m.users[cp.ID] = &cp
	return &cp
}

func (m *memStore) addCourse(c model.Course) *model.Course {
	cp := c
	m.courses[cp.ID] = &cp
	return &cp
}

func (m *memStore) repositories() *Repositories {
	return &Repositories{
		Users:         &memUserRepo{s: m},
		Courses:       &memCourseRepo{s: m},
		Orders:        &memOrderRepo{s: m},
		Payments:      &memPaymentRepo{s: m},
		Enrollments:   &memEnrollmentRepo{s: m},
		WebhookEvents: &memWebhookRepo{s: m},
	}
}

// memTransactor serializes transactions with the store mutex and rolls
// back by restoring a snapshot when the function returns an error.
type memTransactor struct {
	s *memStore
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	snap := t.s.snapshot()
	if err := fn(ctx, t.s.repositories()); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	users       map[uint]model.User
	orders      map[uint]model.PaymentOrder
	payments    map[uint]model.Payment
	enrollments map[uint]model.Enrollment

	nextUserID       uint
	nextOrderID      uint
	nextPaymentID    uint
	nextEnrollmentID uint
}

func (m *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		users:            make(map[uint]model.User, len(m.users)),
		orders:           make(map[uint]model.PaymentOrder, len(m.orders)),
		payments:         make(map[uint]model.Payment, len(m.payments)),
		enrollments:      make(map[uint]model.Enrollment, len(m.enrollments)),
		nextUserID:       m.nextUserID,
		nextOrderID:      m.nextOrderID,
		nextPaymentID:    m.nextPaymentID,
		nextEnrollmentID: m.nextEnrollmentID,
	}
	for id, u := range m.users {
		snap.users[id] = *u
	}
	for id, o := range m.orders {
		snap.orders[id] = *o
	}
	for id, p := range m.payments {
		snap.payments[id] = *p
	}
	for id, e := range m.enrollments {
		snap.enrollments[id] = *e
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.users = make(map[uint]*model.User, len(snap.users))
	for id, u := range snap.users {
		cp := u
		m.users[id] = &cp
	}
	m.orders = make(map[uint]*model.PaymentOrder, len(snap.orders))
	for id, o := range snap.orders {
		cp := o
		m.orders[id] = &cp
	}
	m.payments = make(map[uint]*model.Payment, len(snap.payments))
	for id, p := range snap.payments {
		cp := p
		m.payments[id] = &cp
	}
	m.enrollments = make(map[uint]*model.Enrollment, len(snap.enrollments))
	for id, e := range snap.enrollments {
		cp := e
		m.enrollments[id] = &cp
	}
	m.nextUserID = snap.nextUserID
	m.nextOrderID = snap.nextOrderID
	m.nextPaymentID = snap.nextPaymentID
	m.nextEnrollmentID = snap.nextEnrollmentID
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	user.ID = r.s.nextUserID
	r.s.nextUserID++
	cp := *user
	r.s.users[cp.ID] = &cp
	return nil
}

type memCourseRepo struct{ s *memStore }

func (r *memCourseRepo) GetByID(ctx context.Context, id uint) (*model.Course, error) {
	if c, ok := r.s.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, ErrNotFound
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(ctx context.Context, order *model.PaymentOrder) error {
	for _, o := range r.s.orders {
		if o.ProviderOrderID == order.ProviderOrderID {
			return ErrDuplicate
		}
	}
	order.ID = r.s.nextOrderID
	r.s.nextOrderID++
	cp := *order
	r.s.orders[cp.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*model.PaymentOrder, error) {
	for _, o := range r.s.orders {
		if o.ProviderOrderID == providerOrderID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memOrderRepo) GetByProviderOrderIDForUpdate(ctx context.Context, providerOrderID string) (*model.PaymentOrder, error) {
	// The transactor holds the store mutex for the whole transaction, so
	// plain reads already have the exclusivity the row lock provides.
	return r.GetByProviderOrderID(ctx, providerOrderID)
}

func (r *memOrderRepo) FindCreatedByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.PaymentOrder, error) {
	for _, o := range r.s.orders {
		if o.UserID == userID && o.CourseID == courseID && o.Status == model.OrderStatusCreated {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memOrderRepo) Update(ctx context.Context, order *model.PaymentOrder) error {
	if _, ok := r.s.orders[order.ID]; !ok {
		return ErrNotFound
	}
	cp := *order
	r.s.orders[cp.ID] = &cp
	return nil
}

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	payment.ID = r.s.nextPaymentID
	r.s.nextPaymentID++
	cp := *payment
	r.s.payments[cp.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetLatestByOrderID(ctx context.Context, orderID uint) (*model.Payment, error) {
	var latest *model.Payment
	for _, p := range r.s.payments {
		if p.OrderID == nil || *p.OrderID != orderID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = p
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *memPaymentRepo) Update(ctx context.Context, payment *model.Payment) error {
	if _, ok := r.s.payments[payment.ID]; !ok {
		return ErrNotFound
	}
	cp := *payment
	r.s.payments[cp.ID] = &cp
	return nil
}

func (r *memPaymentRepo) List(ctx context.Context) ([]model.Payment, error) {
	out := make([]model.Payment, 0, len(r.s.payments))
	for id := r.s.nextPaymentID; id > 0; id-- {
		if p, ok := r.s.payments[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memEnrollmentRepo struct{ s *memStore }

func (r *memEnrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	for _, e := range r.s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memEnrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	for _, e := range r.s.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID {
			return ErrDuplicate
		}
	}
	enrollment.ID = r.s.nextEnrollmentID
	r.s.nextEnrollmentID++
	cp := *enrollment
	r.s.enrollments[cp.ID] = &cp
	return nil
}

type memWebhookRepo struct{ s *memStore }

// Create appends an audit row. Audit writes happen outside the
// transaction, so this path uses its own lock instead of the transactor's.
func (r *memWebhookRepo) Create(ctx context.Context, event *model.PaymentWebhookEvent) error {
	r.s.webhookMu.Lock()
	defer r.s.webhookMu.Unlock()
	cp := *event
	r.s.webhooks = append(r.s.webhooks, &cp)
	return nil
}

func (m *memStore) webhookEvents() []*model.PaymentWebhookEvent {
	m.webhookMu.Lock()
	defer m.webhookMu.Unlock()
	out := make([]*model.PaymentWebhookEvent, len(m.webhooks))
	copy(out, m.webhooks)
	return out
}
