package course

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/model"
	"github.com/sahilchouksey/course-market-api/utils/response"
	"github.com/sahilchouksey/course-market-api/utils/validation"
	"gorm.io/gorm"
)

// ClassworkRequest carries classwork create/update fields
type ClassworkRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=255"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at"`
}

// ListClasswork returns a course's classwork, soonest due first
func (h *CourseHandler) ListClasswork(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid course id")
	}

	var classwork []model.Classwork
	if err := h.db.Where("course_id = ?", id).
		Order("due_at ASC NULLS LAST, id ASC").
		Find(&classwork).Error; err != nil {
		return response.InternalServerError(c, "Failed to list classwork")
	}

	return response.Success(c, classwork)
}

// CreateClasswork adds classwork to a course the caller owns
func (h *CourseHandler) CreateClasswork(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	var req ClassworkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	classwork := model.Classwork{
		CourseID:    course.ID,
		Title:       validation.SanitizeString(req.Title),
		Description: strings.TrimSpace(req.Description),
		DueAt:       req.DueAt,
	}
	if err := h.db.Create(&classwork).Error; err != nil {
		return response.InternalServerError(c, "Failed to create classwork")
	}

	return response.Created(c, classwork)
}

// UpdateClasswork updates classwork on a course the caller owns
func (h *CourseHandler) UpdateClasswork(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	classworkID, err := c.ParamsInt("classworkId")
	if err != nil || classworkID <= 0 {
		return response.BadRequest(c, "Invalid classwork id")
	}

	var classwork model.Classwork
	if err := h.db.First(&classwork, classworkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Classwork not found")
		}
		return response.InternalServerError(c, "Failed to load classwork")
	}
	if classwork.CourseID != course.ID {
		return response.NotFound(c, "Classwork not found in this course")
	}

	var req ClassworkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	classwork.Title = validation.SanitizeString(req.Title)
	classwork.Description = strings.TrimSpace(req.Description)
	classwork.DueAt = req.DueAt

	if err := h.db.Save(&classwork).Error; err != nil {
		return response.InternalServerError(c, "Failed to update classwork")
	}

	return response.Success(c, classwork)
}

// DeleteClasswork removes classwork from a course the caller owns
func (h *CourseHandler) DeleteClasswork(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	classworkID, err := c.ParamsInt("classworkId")
	if err != nil || classworkID <= 0 {
		return response.BadRequest(c, "Invalid classwork id")
	}

	res := h.db.Where("id = ? AND course_id = ?", classworkID, course.ID).Delete(&model.Classwork{})
	if res.Error != nil {
		return response.InternalServerError(c, "Failed to delete classwork")
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c, "Classwork not found in this course")
	}

	return response.SuccessWithMessage(c, "Classwork deleted", nil)
}
