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

// LessonRequest carries lesson create/update fields
type LessonRequest struct {
	Title            string `json:"title" validate:"required,min=3,max=255"`
	Description      string `json:"description"`
	VideoURL         string `json:"video_url" validate:"omitempty,url"`
	ColabNotebookURL string `json:"colab_notebook_url" validate:"omitempty,url"`
	NotesContent     string `json:"notes_content"`
	OrderIndex       int    `json:"order_index"`
	IsFreePreview    bool   `json:"is_free_preview"`
}

// CreateLesson adds a lesson to a course the caller owns
func (h *CourseHandler) CreateLesson(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	lesson := model.Lesson{
		CourseID:         course.ID,
		Title:            validation.SanitizeString(req.Title),
		Description:      strings.TrimSpace(req.Description),
		VideoURL:         req.VideoURL,
		ColabNotebookURL: req.ColabNotebookURL,
		NotesContent:     req.NotesContent,
		OrderIndex:       req.OrderIndex,
		IsFreePreview:    req.IsFreePreview,
	}
	if err := h.db.Create(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to create lesson")
	}

	return response.Created(c, lesson)
}

// UpdateLesson updates a lesson on a course the caller owns
func (h *CourseHandler) UpdateLesson(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	lesson, respErr := h.courseLesson(c, course)
	if lesson == nil {
		return respErr
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	lesson.Title = validation.SanitizeString(req.Title)
	lesson.Description = strings.TrimSpace(req.Description)
	lesson.VideoURL = req.VideoURL
	lesson.ColabNotebookURL = req.ColabNotebookURL
	lesson.NotesContent = req.NotesContent
	lesson.OrderIndex = req.OrderIndex
	lesson.IsFreePreview = req.IsFreePreview

	if err := h.db.Save(lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to update lesson")
	}

	return response.Success(c, lesson)
}

// DeleteLesson removes a lesson from a course the caller owns
func (h *CourseHandler) DeleteLesson(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	lesson, respErr := h.courseLesson(c, course)
	if lesson == nil {
		return respErr
	}

	if err := h.db.Delete(lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete lesson")
	}

	return response.SuccessWithMessage(c, "Lesson deleted", nil)
}

// GetLessonClips returns the clip index of a lesson, gated the same way
// as the lesson itself: free previews are open, the rest needs an active
// enrollment, ownership, or admin.
func (h *CourseHandler) GetLessonClips(c *fiber.Ctx) error {
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil || lessonID <= 0 {
		return response.BadRequest(c, "Invalid lesson id")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to load lesson")
	}

	if !lesson.IsFreePreview {
		allowed := false
		if user, ok := middleware.GetUser(c); ok {
			var course model.Course
			if err := h.db.First(&course, lesson.CourseID).Error; err != nil {
				return response.InternalServerError(c, "Failed to load course")
			}
			if user.ID == course.InstructorID || user.Role == model.RoleAdmin {
				allowed = true
			} else {
				var enrollment model.Enrollment
				err := h.db.Where("user_id = ? AND course_id = ? AND status = ?",
					user.ID, lesson.CourseID, model.EnrollmentStatusActive).
					First(&enrollment).Error
				if err == nil {
					allowed = true
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return response.InternalServerError(c, "Failed to check enrollment")
				}
			}
		}
		if !allowed {
			return response.Forbidden(c, "Enroll in the course to view this lesson")
		}
	}

	var clips []model.VideoClip
	if err := h.db.Where("lesson_id = ?", lesson.ID).
		Order("order_index ASC, start_seconds ASC").
		Find(&clips).Error; err != nil {
		return response.InternalServerError(c, "Failed to load clips")
	}

	return response.Success(c, clips)
}

// ClipRequest carries clip create fields
type ClipRequest struct {
	Title        string `json:"title" validate:"required,min=1,max=255"`
	StartSeconds int    `json:"start_seconds" validate:"gte=0"`
	EndSeconds   int    `json:"end_seconds" validate:"gte=0"`
	Notes        string `json:"notes"`
	OrderIndex   int    `json:"order_index"`
}

// CreateLessonClip adds a clip to a lesson on a course the caller owns
func (h *CourseHandler) CreateLessonClip(c *fiber.Ctx) error {
	course, respErr := h.ownedCourse(c)
	if course == nil {
		return respErr
	}

	lesson, respErr := h.courseLesson(c, course)
	if lesson == nil {
		return respErr
	}

	var req ClipRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.EndSeconds > 0 && req.EndSeconds <= req.StartSeconds {
		return response.BadRequest(c, "Clip end must be after its start")
	}

	clip := model.VideoClip{
		LessonID:     lesson.ID,
		Title:        validation.SanitizeString(req.Title),
		StartSeconds: req.StartSeconds,
		EndSeconds:   req.EndSeconds,
		Notes:        strings.TrimSpace(req.Notes),
		OrderIndex:   req.OrderIndex,
	}
	if err := h.db.Create(&clip).Error; err != nil {
		return response.InternalServerError(c, "Failed to create clip")
	}

	return response.Created(c, clip)
}

// courseLesson loads the :lessonId lesson and checks it belongs to the
// course. On failure the response has been written and lesson is nil.
func (h *CourseHandler) courseLesson(c *fiber.Ctx, course *model.Course) (*model.Lesson, error) {
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil || lessonID <= 0 {
		return nil, response.BadRequest(c, "Invalid lesson id")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "Lesson not found")
		}
		return nil, response.InternalServerError(c, "Failed to load lesson")
	}

	if lesson.CourseID != course.ID {
		return nil, response.NotFound(c, "Lesson not found in this course")
	}

	return &lesson, nil
}
