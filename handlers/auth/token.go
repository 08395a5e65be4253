package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/course-market-api/model"
	authutil "github.com/sahilchouksey/course-market-api/utils/auth"
	"github.com/sahilchouksey/course-market-api/utils/response"
)

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse carries a fresh access token
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// RefreshToken exchanges a valid refresh token for a new access token
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}
	if claims.TokenType != authutil.TokenTypeRefresh {
		return response.Unauthorized(c, "Not a refresh token")
	}

	// Revoked refresh tokens stay dead until they expire
	revoked, err := h.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if revoked {
		return response.Unauthorized(c, "Refresh token has been revoked")
	}

	// Token version bumps invalidate every outstanding token for the user
	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		return response.Unauthorized(c, "User no longer exists")
	}
	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Refresh token has been invalidated")
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	return response.Success(c, RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(h.jwtManager.AccessTokenExpiry().Seconds()),
	})
}

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*authutil.Claims)
	if !ok || claims == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	expiresAt := claims.ExpiresAt.Time
	if err := h.blacklistService.RevokeToken(c.Context(), claims.ID, claims.UserID, expiresAt, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to revoke token")
	}

	return response.SuccessWithMessage(c, "Logged out", nil)
}
