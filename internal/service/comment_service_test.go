package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentTrims(t *testing.T) {
	comments := noopCommentRepo()
	var created *models.Comment
	comments.createFn = func(_ context.Context, comment *models.Comment) error {
		created = comment
		comment.ID = 1
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo(), notifications.NewNotifier(nil))

	got, err := svc.CreateComment(context.Background(), 1, 2, "  nice  ")
	require.NoError(t, err)
	assert.Equal(t, "nice", created.Content)
	assert.Equal(t, uint(2), got.PostID)
}

func TestCreateCommentValidation(t *testing.T) {
	svc := NewCommentService(noopCommentRepo(), noopPostRepo(), notifications.NewNotifier(nil))

	var appErr *models.AppError

	_, err := svc.CreateComment(context.Background(), 1, 2, "   ")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.CreateComment(context.Background(), 1, 2, strings.Repeat("a", 1001))
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestCreateCommentMissingPost(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := NewCommentService(noopCommentRepo(), posts, notifications.NewNotifier(nil))

	_, err := svc.CreateComment(context.Background(), 1, 404, "hello")
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestDeleteCommentOwnership(t *testing.T) {
	comments := noopCommentRepo()
	comments.deleteOwnedFn = func(_ context.Context, id, userID uint) error {
		if userID != 1 {
			return models.NewNotFoundError("Comment", id)
		}
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo(), notifications.NewNotifier(nil))

	require.NoError(t, svc.DeleteComment(context.Background(), 5, 1))

	err := svc.DeleteComment(context.Background(), 5, 2)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
