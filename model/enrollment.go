package model

import (
	"time"
)

// Enrollment statuses
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
)

// Enrollment grants a user access to a course's paid content.
// At most one row may ever exist per (user, course) pair; the composite
// unique index backs the idempotent granting path in the payment flow.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:uq_enrollments_user_course;index" json:"user_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:uq_enrollments_user_course;index" json:"course_id"`
	Status     string    `gorm:"type:varchar(50);not null;default:'active'" json:"status"` // active, completed, cancelled
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}
