package model

import (
	"time"
)

// User roles
const (
	RoleStudent    = "student"
	RoleTeacher    = "teacher"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User represents a registered user in the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string    `gorm:"not null" json:"name"`
	Role         string    `gorm:"type:varchar(20);default:'student';index" json:"role"` // student, teacher, instructor, admin
	TokenVersion int       `gorm:"default:0" json:"-"`                                   // Increment to invalidate all user tokens

	// Relationships
	Courses     []Course     `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"-"`
	Enrollments []Enrollment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Payments    []Payment    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// CanManageCourses reports whether the role may create or edit courses.
func (u *User) CanManageCourses() bool {
	return u.Role == RoleTeacher || u.Role == RoleInstructor || u.Role == RoleAdmin
}
