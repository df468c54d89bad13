package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/notifications"
	"github.com/shreyea/write/internal/repository"
	"github.com/shreyea/write/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(postRepo repository.PostRepository, store storage.Store) *PostService {
	return NewPostService(postRepo, store, notifications.NewNotifier(nil), DefaultMaxUploadBytes)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestCreatePostTrimsContent(t *testing.T) {
	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, post *models.Post) error {
		created = post
		post.ID = 1
		return nil
	}
	svc := newPostService(repo, nil)

	_, err := svc.CreatePost(context.Background(), 1, "  hello  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", created.Content)
	assert.Empty(t, created.ImageURL)
}

func TestCreatePostRejectsEmptyAndOversized(t *testing.T) {
	svc := newPostService(noopPostRepo(), nil)

	_, err := svc.CreatePost(context.Background(), 1, "   ", nil)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.CreatePost(context.Background(), 1, strings.Repeat("a", 5001), nil)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestCreatePostWithImage(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "http://localhost/media")
	require.NoError(t, err)

	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, post *models.Post) error {
		created = post
		post.ID = 1
		return nil
	}
	svc := newPostService(repo, store)

	_, err = svc.CreatePost(context.Background(), 42, "with image", &ImageUpload{
		Data:        pngBytes(t),
		ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ImageURL, "http://localhost/media/42/"))
	assert.True(t, strings.HasSuffix(created.ImageURL, ".png"))
}

func TestCreatePostRejectsBadImage(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	svc := newPostService(noopPostRepo(), store)

	var appErr *models.AppError

	_, err = svc.CreatePost(context.Background(), 1, "x", &ImageUpload{
		Data:        []byte("plain text"),
		ContentType: "text/plain",
	})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.CreatePost(context.Background(), 1, "x", &ImageUpload{
		Data:        make([]byte, DefaultMaxUploadBytes+1),
		ContentType: "image/png",
	})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

type recordingStore struct {
	removed   []string
	removeErr error
}

func (s *recordingStore) Save(_ context.Context, key string, _ string, _ io.Reader) (string, error) {
	return "http://localhost/media/" + key, nil
}

func (s *recordingStore) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	return s.removeErr
}

func TestDeletePostRemovesStoredImage(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 42, ImageURL: "http://localhost/media/42/1700000000.png"}, nil
	}
	var deleted bool
	repo.deleteOwnedFn = func(context.Context, uint, uint) error {
		deleted = true
		return nil
	}
	store := &recordingStore{}
	svc := newPostService(repo, store)

	require.NoError(t, svc.DeletePost(context.Background(), 7, 42))
	assert.True(t, deleted)
	assert.Equal(t, []string{"42/1700000000.png", "42/1700000000_thumb.webp"}, store.removed)
}

func TestDeletePostWithoutImageSkipsStore(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, Content: "text only"}, nil
	}
	store := &recordingStore{}
	svc := newPostService(repo, store)

	require.NoError(t, svc.DeletePost(context.Background(), 7, 1))
	assert.Empty(t, store.removed)
}

func TestDeletePostSwallowsStoreError(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, ImageURL: "42/1700000000.webp"}, nil
	}
	store := &recordingStore{removeErr: errors.New("bucket unreachable")}
	svc := newPostService(repo, store)

	require.NoError(t, svc.DeletePost(context.Background(), 7, 1))
	assert.NotEmpty(t, store.removed)
}

func TestDeletePostPropagatesOwnershipError(t *testing.T) {
	repo := noopPostRepo()
	repo.deleteOwnedFn = func(_ context.Context, id, userID uint) error {
		return models.NewNotFoundError("Post", id)
	}
	svc := newPostService(repo, nil)

	err := svc.DeletePost(context.Background(), 7, 1)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestToggleLike(t *testing.T) {
	repo := noopPostRepo()
	var liked, unliked bool
	repo.likeFn = func(context.Context, uint, uint) error {
		liked = true
		return nil
	}
	repo.unlikeFn = func(context.Context, uint, uint) error {
		unliked = true
		return nil
	}
	svc := newPostService(repo, nil)

	require.NoError(t, svc.ToggleLike(context.Background(), 1, 2, false))
	assert.True(t, liked)
	assert.False(t, unliked)

	liked = false
	require.NoError(t, svc.ToggleLike(context.Background(), 1, 2, true))
	assert.True(t, unliked)
	assert.False(t, liked)
}

func TestToggleLikeMissingPost(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := newPostService(repo, nil)

	err := svc.ToggleLike(context.Background(), 1, 404, false)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestGetFeedDelegates(t *testing.T) {
	repo := noopPostRepo()
	repo.feedFn = func(_ context.Context, userID uint) ([]*models.Post, error) {
		assert.Equal(t, uint(3), userID)
		return []*models.Post{{ID: 1, Content: "a", CreatedAt: time.Now().Add(-2 * time.Hour)}}, nil
	}
	svc := newPostService(repo, nil)

	posts, err := svc.GetFeed(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].Content)
	assert.Equal(t, "2h ago", posts[0].Timestamp)
}
