package course

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/model"
	"github.com/sahilchouksey/course-market-api/utils/middleware"
	"github.com/sahilchouksey/course-market-api/utils/response"
	"gorm.io/gorm"
)

// AccessResponse tells a client which lessons it may open
type AccessResponse struct {
	CourseID       uint   `json:"course_id"`
	Enrolled       bool   `json:"enrolled"`
	AllowedLessons []uint `json:"allowed_lessons"`
}

// GetAccess reports the caller's access to a course. Anonymous and
// unenrolled callers see only free-preview lessons; enrolled students,
// the owning instructor, and admins see everything.
func (h *CourseHandler) GetAccess(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	var lessons []model.Lesson
	if err := h.db.Where("course_id = ?", course.ID).
		Order("order_index ASC, id ASC").
		Find(&lessons).Error; err != nil {
		return response.InternalServerError(c, "Failed to load lessons")
	}

	fullAccess := false
	if user, ok := middleware.GetUser(c); ok {
		if user.ID == course.InstructorID || user.Role == model.RoleAdmin {
			fullAccess = true
		} else {
			var enrollment model.Enrollment
			err := h.db.Where("user_id = ? AND course_id = ? AND status = ?",
				user.ID, course.ID, model.EnrollmentStatusActive).
				First(&enrollment).Error
			if err == nil {
				fullAccess = true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return response.InternalServerError(c, "Failed to check enrollment")
			}
		}
	}

	allowed := make([]uint, 0, len(lessons))
	for _, lesson := range lessons {
		if fullAccess || lesson.IsFreePreview {
			allowed = append(allowed, lesson.ID)
		}
	}

	return response.Success(c, AccessResponse{
		CourseID:       course.ID,
		Enrolled:       fullAccess,
		AllowedLessons: allowed,
	})
}
