package course

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/model"
	"github.com/sahilchouksey/course-market-api/utils/middleware"
	"github.com/sahilchouksey/course-market-api/utils/response"
	"github.com/sahilchouksey/course-market-api/utils/validation"
	"gorm.io/gorm"
)

type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents a course creation request
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Slug        string  `json:"slug" validate:"omitempty,min=3,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// UpdateCourseRequest represents a course update request
type UpdateCourseRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Slug        *string  `json:"slug" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}

// ListCourses returns the public course catalog
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	var courses []model.Course
	if err := h.db.Order("created_at DESC").Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to list courses")
	}
	return response.Success(c, courses)
}

// GetCourse returns a single course with its lessons
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	err = h.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC, id ASC")
	}).First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	return response.Success(c, course)
}

// GetCourseBySlug returns a single course looked up by its slug, with lessons.
func (h *CourseHandler) GetCourseBySlug(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Params("slug"))
	if slug == "" {
		return response.BadRequest(c, "Invalid course slug")
	}

	var course model.Course
	err := h.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC, id ASC")
	}).Where("slug = ?", slug).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	return response.Success(c, course)
}

// MyCourses returns the courses owned by the authenticated instructor
func (h *CourseHandler) MyCourses(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var courses []model.Course
	if err := h.db.Where("instructor_id = ?", userID).Order("created_at DESC").Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to list courses")
	}
	return response.Success(c, courses)
}

// CreateCourse creates a new course owned by the caller
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	price, err := validation.NormalizeAmount(req.Price)
	if err != nil {
		return response.BadRequest(c, "Price must be a non-negative amount with at most two decimals")
	}

	course := model.Course{
		InstructorID: userID,
		Title:        validation.SanitizeString(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Price:        price,
	}
	if slug := validation.SanitizeString(req.Slug); slug != "" {
		course.Slug = &slug
	}

	if err := h.db.Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "A course with this slug already exists")
		}
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse updates a course the caller owns
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Title != nil {
		course.Title = validation.SanitizeString(*req.Title)
	}
	if req.Slug != nil {
		slug := validation.SanitizeString(*req.Slug)
		if slug == "" {
			course.Slug = nil
		} else {
			course.Slug = &slug
		}
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		price, err := validation.NormalizeAmount(*req.Price)
		if err != nil {
			return response.BadRequest(c, "Price must be a non-negative amount with at most two decimals")
		}
		course.Price = price
	}

	if err := h.db.Save(course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "A course with this slug already exists")
		}
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// DeleteCourse removes a course the caller owns, cascading to lessons
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	if err := h.db.Delete(course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted", nil)
}

// ownedCourse loads the :id course and enforces ownership. Admins may
// manage any course. On failure the response has already been written and
// the returned course is nil.
func (h *CourseHandler) ownedCourse(c *fiber.Ctx) (*model.Course, error) {
	user, ok := middleware.GetUser(c)
	if !ok {
		return nil, response.Unauthorized(c, "Not authenticated")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "Course not found")
		}
		return nil, response.InternalServerError(c, "Failed to load course")
	}

	if course.InstructorID != user.ID && user.Role != model.RoleAdmin {
		return nil, response.Forbidden(c, "You do not own this course")
	}

	return &course, nil
}
