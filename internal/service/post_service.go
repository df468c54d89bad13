package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/shreyea/write/internal/cache"
	"github.com/shreyea/write/internal/middleware"
	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/notifications"
	"github.com/shreyea/write/internal/observability"
	"github.com/shreyea/write/internal/repository"
	"github.com/shreyea/write/internal/storage"
	"github.com/shreyea/write/internal/validation"
)

// DefaultMaxUploadBytes caps post image uploads at 5 MB.
const DefaultMaxUploadBytes = 5 * 1024 * 1024

// ImageUpload carries an optional post image through the service layer.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// PostService provides post business logic.
type PostService struct {
	postRepo       repository.PostRepository
	store          storage.Store
	notifier       *notifications.Notifier
	maxUploadBytes int64
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, store storage.Store, notifier *notifications.Notifier, maxUploadBytes int64) *PostService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &PostService{
		postRepo:       postRepo,
		store:          store,
		notifier:       notifier,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreatePost validates and stores a new post, uploading the image first when
// one is attached.
func (s *PostService) CreatePost(ctx context.Context, userID uint, content string, image *ImageUpload) (*models.Post, error) {
	trimmed, err := validation.ValidatePostContent(content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var imageURL string
	if image != nil {
		imageURL, err = s.uploadImage(ctx, userID, image)
		if err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		UserID:   userID,
		Content:  trimmed,
		ImageURL: imageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	observability.PostsCreated.WithLabelValues(fmt.Sprintf("%t", imageURL != "")).Inc()

	cache.InvalidateFeedViews(ctx)
	if pubErr := s.notifier.PublishRevalidate(ctx, "/"); pubErr != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish revalidate event", slog.String("error", pubErr.Error()))
	}

	return s.postRepo.GetByID(ctx, post.ID, userID)
}

func (s *PostService) uploadImage(ctx context.Context, userID uint, image *ImageUpload) (string, error) {
	if int64(len(image.Data)) > s.maxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("image exceeds the %d MB limit", s.maxUploadBytes/(1024*1024)))
	}
	if !validation.AllowedImageMIME(image.ContentType) {
		return "", models.NewValidationError("image must be JPEG, PNG, GIF, or WebP")
	}
	if s.store == nil {
		return "", models.NewInternalError(fmt.Errorf("image storage is not configured"))
	}

	observability.ImageUploadBytes.Observe(float64(len(image.Data)))

	key := fmt.Sprintf("%d/%d%s", userID, time.Now().UnixMilli(), extensionFor(image.ContentType))
	url, err := s.store.Save(ctx, key, image.ContentType, bytes.NewReader(image.Data))
	if err != nil {
		return "", models.NewInternalError(err)
	}

	// Thumbnail generation is best effort; the original is the post image.
	if thumb, thumbErr := storage.Thumbnail(image.Data); thumbErr == nil {
		thumbKey := strings.TrimSuffix(key, extensionFor(image.ContentType)) + "_thumb.webp"
		if _, saveErr := s.store.Save(ctx, thumbKey, "image/webp", bytes.NewReader(thumb)); saveErr != nil {
			middleware.Logger.WarnContext(ctx, "failed to store thumbnail", slog.String("error", saveErr.Error()))
		}
	} else {
		middleware.Logger.WarnContext(ctx, "failed to generate thumbnail", slog.String("error", thumbErr.Error()))
	}

	return url, nil
}

func extensionFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// GetPost returns a single post with author, likes, and comments.
func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	post.Decorate(time.Now())
	return post, nil
}

// GetPostsByUser returns a user's posts, newest first.
func (s *PostService) GetPostsByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, p := range posts {
		p.Decorate(now)
	}
	return posts, nil
}

// GetFeed returns posts by the user and their accepted friends, newest first.
// The rendered feed is cached per user for a short window.
func (s *PostService) GetFeed(ctx context.Context, userID uint) ([]*models.Post, error) {
	key := cache.FeedViewKey(userID)
	hit := true
	posts, err := cache.Aside(ctx, key, cache.FeedViewTTL, func() ([]*models.Post, error) {
		hit = false
		return s.postRepo.Feed(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	observability.RecordFeedCacheHit(hit)

	// Relative ages are rendered on the way out so cached entries stay raw.
	now := time.Now()
	for _, p := range posts {
		p.Decorate(now)
	}
	return posts, nil
}

// DeletePost deletes a post owned by userID. Ownership is enforced
// atomically in the repository. The stored image and its thumbnail are
// removed after the row delete succeeds.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}

	if err := s.postRepo.DeleteOwned(ctx, postID, userID); err != nil {
		return err
	}

	s.removeImage(ctx, post.ImageURL)

	cache.InvalidateFeedViews(ctx)
	if pubErr := s.notifier.PublishRevalidate(ctx, "/"); pubErr != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish revalidate event", slog.String("error", pubErr.Error()))
	}
	return nil
}

// removeImage deletes a post's stored image and thumbnail. Removal is best
// effort; an orphaned blob never fails the delete.
func (s *PostService) removeImage(ctx context.Context, imageURL string) {
	if imageURL == "" || s.store == nil {
		return
	}
	key := imageKeyFromURL(imageURL)
	if key == "" {
		return
	}

	if err := s.store.Remove(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove post image",
			slog.String("key", key), slog.String("error", err.Error()))
	}

	thumbKey := strings.TrimSuffix(key, path.Ext(key)) + "_thumb.webp"
	if err := s.store.Remove(ctx, thumbKey); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove post thumbnail",
			slog.String("key", thumbKey), slog.String("error", err.Error()))
	}
}

// imageKeyFromURL recovers the storage key from a stored public URL. Keys
// are written as "<userID>/<filename>", the last two path segments.
func imageKeyFromURL(imageURL string) string {
	trimmed := imageURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

// ToggleLike flips the caller's like on a post. hasLiked is the state the
// client observed; the repository operations are idempotent so a stale flag
// cannot double-count.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint, hasLiked bool) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return err
	}

	if hasLiked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return err
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return err
		}
	}

	cache.InvalidateFeedViews(ctx)
	if pubErr := s.notifier.PublishRevalidate(ctx, "/"); pubErr != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish revalidate event", slog.String("error", pubErr.Error()))
	}
	return nil
}
