// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"io"
	"mime/multipart"

	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. Accepts multipart form data with a
// "content" field and an optional "image" file, or a plain JSON body for
// text-only posts.
// @Summary Create post
// @Description Create a text post with an optional image attachment.
// @Tags posts
// @Accept mpfd
// @Produce json
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)

	// First write from a fresh identity may land before the profile page was
	// ever visited; provisioning is idempotent.
	if email, ok := c.Locals("userEmail").(string); ok && email != "" {
		if _, err := s.userService.EnsureProfile(ctx, email); err != nil {
			return respondServiceError(c, err)
		}
	}

	content := c.FormValue("content")
	var image *service.ImageUpload

	if file, err := c.FormFile("image"); err == nil && file != nil {
		img, readErr := readUpload(file)
		if readErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded image"))
		}
		image = img
	}

	if content == "" && image == nil {
		// Not a form submission; try JSON
		var req struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		content = req.Content
	}

	post, err := s.postService.CreatePost(ctx, userID, content, image)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// readUpload loads a multipart file into memory for the service layer.
func readUpload(file *multipart.FileHeader) (*service.ImageUpload, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &service.ImageUpload{
		Data:        data,
		ContentType: file.Header.Get("Content-Type"),
	}, nil
}

// GetFeed handles GET /api/feed
// @Summary Get feed
// @Description Posts by the viewer and their accepted friends, newest first.
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.GetFeed(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	posts, err := s.postService.GetPostsByUser(c.Context(), userID, p.Limit, p.Offset, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), postID, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.toggleLike(c, false)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.toggleLike(c, true)
}

func (s *Server) toggleLike(c *fiber.Ctx, hasLiked bool) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.ToggleLike(c.Context(), currentUserID(c), postID, hasLiked); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"liked": !hasLiked})
}
