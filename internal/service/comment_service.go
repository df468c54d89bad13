package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shreyea/write/internal/cache"
	"github.com/shreyea/write/internal/middleware"
	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/notifications"
	"github.com/shreyea/write/internal/repository"
	"github.com/shreyea/write/internal/validation"
)

// CommentService provides comment business logic.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	notifier    *notifications.Notifier
}

// NewCommentService returns a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, notifier *notifications.Notifier) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		notifier:    notifier,
	}
}

// CreateComment validates and stores a comment on a post.
func (s *CommentService) CreateComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	trimmed, err := validation.ValidateCommentContent(content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	// The post must exist before we attach a comment to it.
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: trimmed,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	cache.InvalidateFeedViews(ctx)
	if pubErr := s.notifier.PublishRevalidate(ctx, "/"); pubErr != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish revalidate event", slog.String("error", pubErr.Error()))
	}

	return comment, nil
}

// GetComments returns comments on a post, oldest first.
func (s *CommentService) GetComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.GetByPostID(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, c := range comments {
		c.Decorate(now)
	}
	return comments, nil
}

// DeleteComment deletes a comment owned by userID.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	if err := s.commentRepo.DeleteOwned(ctx, commentID, userID); err != nil {
		return err
	}
	cache.InvalidateFeedViews(ctx)
	return nil
}
