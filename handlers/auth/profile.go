package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/utils/middleware"
	"github.com/sahilchouksey/course-market-api/utils/response"
	"github.com/sahilchouksey/course-market-api/utils/validation"
)

// UpdateProfileRequest carries profile fields a user may change
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"omitempty,min=2,max=100"`
}

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, toUserResponse(user))
}

// UpdateProfile updates the authenticated user's profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	name := validation.SanitizeString(req.Name)
	if name == "" {
		return response.BadRequest(c, "Name is required")
	}

	user.Name = name
	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toUserResponse(user))
}
