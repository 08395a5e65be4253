package services

import (
	"context"
	"errors"
	"time"

	"github.com/sahilchouksey/course-market-api/model"
)

// EnrollmentService owns the enrollment uniqueness invariant: at most one
// row per (user, course) pair, ever. All enrollment writes in the payment
// flow go through EnsureEnrollment.
type EnrollmentService struct{}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService() *EnrollmentService {
	return &EnrollmentService{}
}

// EnsureEnrollment idempotently guarantees an enrollment exists for the
// user/course pair. An existing row is returned unchanged regardless of
// status; a cancelled or completed enrollment is never reset to active by
// a later payment. The repository set must belong to the same transaction
// as the order/payment mutation this call accompanies.
func (s *EnrollmentService) EnsureEnrollment(ctx context.Context, r *Repositories, userID, courseID uint) (*model.Enrollment, error) {
	enrollment, err := r.Enrollments.GetByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return enrollment, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	enrollment = &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     model.EnrollmentStatusActive,
		EnrolledAt: time.Now().UTC(),
	}
	if err := r.Enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Lost the insert race; the winning row satisfies the call.
			return r.Enrollments.GetByUserAndCourse(ctx, userID, courseID)
		}
		return nil, err
	}

	return enrollment, nil
}
