package server

import (
	"github.com/shreyea/write/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/friends/requests/:userId
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	request, err := s.friendService.SendFriendRequest(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetPendingRequests handles GET /api/friends/requests
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.GetPendingRequests(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(requests)
}

// GetSentRequests handles GET /api/friends/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.GetSentRequests(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(requests)
}

// AcceptFriendRequest handles POST /api/friends/requests/:requestId/accept
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	request, err := s.friendService.AcceptFriendRequest(c.Context(), currentUserID(c), requestID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(request)
}

// RejectFriendRequest handles POST /api/friends/requests/:requestId/reject
func (s *Server) RejectFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	request, err := s.friendService.RejectFriendRequest(c.Context(), currentUserID(c), requestID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(request)
}

// RespondFriendRequestForm handles POST /api/friends/respond. It accepts
// application/x-www-form-urlencoded fields so the requests page still works
// without scripting, and delegates to the same accept/reject path.
func (s *Server) RespondFriendRequestForm(c *fiber.Ctx) error {
	var req struct {
		RequestID uint   `json:"requestId" form:"requestId"`
		Action    string `json:"action" form:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.RequestID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("requestId is required"))
	}

	var (
		request *models.FriendRequest
		err     error
	)
	switch req.Action {
	case "accept":
		request, err = s.friendService.AcceptFriendRequest(c.Context(), currentUserID(c), req.RequestID)
	case "reject":
		request, err = s.friendService.RejectFriendRequest(c.Context(), currentUserID(c), req.RequestID)
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("action must be \"accept\" or \"reject\""))
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(request)
}

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.GetFriends(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(friends)
}

// GetFriendStatus handles GET /api/friends/status/:userId
func (s *Server) GetFriendStatus(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	status, requestID, err := s.friendService.GetFriendStatus(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := fiber.Map{"status": status}
	if requestID != 0 {
		resp["request_id"] = requestID
	}
	return c.JSON(resp)
}
