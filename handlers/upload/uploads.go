package upload

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/model"
	"github.com/sahilchouksey/course-market-api/services/storage"
	"github.com/sahilchouksey/course-market-api/utils/middleware"
	"github.com/sahilchouksey/course-market-api/utils/pdfvalidation"
	"github.com/sahilchouksey/course-market-api/utils/response"
	"github.com/sahilchouksey/course-market-api/utils/validation"
	"gorm.io/gorm"
)

const presignExpiry = 15 * time.Minute

type UploadHandler struct {
	db     *gorm.DB
	spaces *storage.SpacesClient
}

// NewUploadHandler creates a new upload handler. spaces may be nil when
// object storage is not configured; upload endpoints then report 503.
func NewUploadHandler(db *gorm.DB, spaces *storage.SpacesClient) *UploadHandler {
	return &UploadHandler{db: db, spaces: spaces}
}

// SignUploadRequest asks for a presigned browser upload slot
type SignUploadRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Kind     string `json:"kind"` // attachments, videos, notebooks
	Filename string `json:"filename" validate:"required"`
}

// SignUpload creates an Attachment record and returns a presigned PUT URL
// so the browser can push the file straight to object storage.
func (h *UploadHandler) SignUpload(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Object storage is not configured", "STORAGE_UNAVAILABLE")
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SignUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 || req.Filename == "" {
		return response.BadRequest(c, "course_id and filename are required")
	}

	kind := validation.SanitizeString(req.Kind)
	switch kind {
	case "":
		kind = "attachments"
	case "attachments", "videos", "notebooks":
	default:
		return response.BadRequest(c, "kind must be attachments, videos, or notebooks")
	}

	key := storage.MaterialKey(req.CourseID, kind, req.Filename)
	contentType := storage.ContentTypeFor(req.Filename)

	uploadURL, err := h.spaces.PresignedPutURL(key, contentType, presignExpiry)
	if err != nil {
		return response.InternalServerError(c, "Failed to presign upload")
	}

	attachment := model.Attachment{
		Filename:        req.Filename,
		URL:             h.spaces.FileURL(key),
		StorageProvider: "spaces",
		ContentType:     contentType,
		CreatedByUserID: userID,
	}
	if err := h.db.Create(&attachment).Error; err != nil {
		return response.InternalServerError(c, "Failed to record attachment")
	}

	return response.Created(c, fiber.Map{
		"attachment": attachment,
		"upload_url": uploadURL,
		"expires_in": int(presignExpiry.Seconds()),
	})
}

// UploadPDF accepts a multipart PDF (lesson notes, classwork sheets),
// validates it, and stores it directly.
func (h *UploadHandler) UploadPDF(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Object storage is not configured", "STORAGE_UNAVAILABLE")
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file field is required")
	}

	result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.LessonNotesLimits)
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to open upload")
	}
	defer src.Close()

	key := storage.MaterialKey(uint(courseID), "attachments", file.Filename)
	url, err := h.spaces.UploadFile(c.Context(), key, src, "application/pdf")
	if err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	size := file.Size
	attachment := model.Attachment{
		Filename:        file.Filename,
		URL:             url,
		StorageProvider: "spaces",
		ContentType:     "application/pdf",
		SizeBytes:       &size,
		CreatedByUserID: userID,
	}
	if err := h.db.Create(&attachment).Error; err != nil {
		return response.InternalServerError(c, "Failed to record attachment")
	}

	return response.Created(c, fiber.Map{
		"attachment": attachment,
		"page_count": result.PageCount,
	})
}
