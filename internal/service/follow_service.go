package service

import (
	"context"

	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/repository"
)

// FollowService provides follow graph business logic. Following is
// independent of friendship and does not affect the feed.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow records that userID follows targetUserID. Re-following is a no-op.
func (s *FollowService) Follow(ctx context.Context, userID, targetUserID uint) error {
	if userID == targetUserID {
		return models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return err
	}
	return s.followRepo.Follow(ctx, userID, targetUserID)
}

// Unfollow removes the follow edge. Unfollowing someone not followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetUserID uint) error {
	if userID == targetUserID {
		return models.NewValidationError("Cannot unfollow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return err
	}
	return s.followRepo.Unfollow(ctx, userID, targetUserID)
}

// IsFollowing reports whether userID follows targetUserID.
func (s *FollowService) IsFollowing(ctx context.Context, userID, targetUserID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, userID, targetUserID)
}
