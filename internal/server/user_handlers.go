// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"errors"
	"strings"

	"github.com/shreyea/write/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me. The profile is provisioned on
// first contact using the email carried in the session token.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)

	if email, ok := c.Locals("userEmail").(string); ok && email != "" {
		user, err := s.userService.EnsureProfile(ctx, email)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(user)
	}

	// Ticket-authenticated connections carry no email claim
	user, err := s.userService.GetUser(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateUsername handles PUT /api/users/me/username
// @Summary Change username
// @Description Apply the account's one-time username change.
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/username [put]
func (s *Server) UpdateUsername(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)

	// Accepts both JSON bodies and form submissions from the settings page.
	var req struct {
		Username string `json:"username" form:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SetUsername(ctx, userID, req.Username)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// CheckUsername handles GET /api/users/username-available. The settings form
// probes it while the user types.
func (s *Server) CheckUsername(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("username query parameter is required"))
	}

	available, err := s.userService.UsernameAvailable(c.Context(), username)
	if err != nil {
		// Format failures are an answer, not an error
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			return c.JSON(fiber.Map{
				"username":  username,
				"available": false,
				"reason":    appErr.Message,
			})
		}
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"username": username, "available": available})
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetProfile handles GET /api/profiles/:username
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	profile, err := s.userService.GetProfile(c.Context(), username, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(profile)
}

// Follow handles POST /api/follow with {"action": "follow"|"unfollow"}.
func (s *Server) Follow(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)

	var req struct {
		Action       string `json:"action"`
		TargetUserID uint   `json:"targetUserId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.TargetUserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("targetUserId is required"))
	}

	var err error
	switch req.Action {
	case "follow":
		err = s.followService.Follow(ctx, userID, req.TargetUserID)
	case "unfollow":
		err = s.followService.Unfollow(ctx, userID, req.TargetUserID)
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("action must be \"follow\" or \"unfollow\""))
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

// GetFollowStatus handles GET /api/follow/status/:userId.
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	following, err := s.followService.IsFollowing(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"following": following})
}
