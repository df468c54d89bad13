// Package service implements the application's business logic.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shreyea/write/internal/cache"
	"github.com/shreyea/write/internal/middleware"
	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/notifications"
	"github.com/shreyea/write/internal/observability"
	"github.com/shreyea/write/internal/repository"
)

// Friend status values as rendered to clients. A present request that is not
// accepted always reads as "pending" regardless of which side sent it.
const (
	FriendStatusNone    = "none"
	FriendStatusPending = "pending"
	FriendStatusFriends = "friends"
)

// FriendService provides friend-request business logic.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	notifier   *notifications.Notifier
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository, notifier *notifications.Notifier) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// SendFriendRequest sends a friend request to the target user. The duplicate
// check and insert are atomic in the repository, so concurrent sends cannot
// create two active requests.
func (s *FriendService) SendFriendRequest(ctx context.Context, userID, targetUserID uint) (*models.FriendRequest, error) {
	request, err := s.friendRepo.CreateRequest(ctx, userID, targetUserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSelfFriendRequest):
			return nil, models.NewValidationError("Cannot send friend request to yourself")
		case errors.Is(err, repository.ErrFriendRequestExists):
			return nil, models.NewValidationError("A friend request already exists between you and this user")
		default:
			return nil, err
		}
	}

	observability.FriendRequestTransitions.WithLabelValues("sent").Inc()
	cache.InvalidateRequestsView(ctx, targetUserID)

	if requester, lookupErr := s.userRepo.GetByID(ctx, userID); lookupErr == nil {
		if pubErr := s.notifier.PublishFriendRequest(ctx, targetUserID, notifications.FriendRequestPayload{
			RequestID: request.ID,
			Username:  requester.Username,
			Status:    string(models.FriendRequestPending),
		}); pubErr != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish friend request event", slog.String("error", pubErr.Error()))
		}
	}

	return s.friendRepo.GetByID(ctx, request.ID)
}

// AcceptFriendRequest accepts a pending friend request addressed to userID.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, userID, requestID uint) (*models.FriendRequest, error) {
	return s.respond(ctx, userID, requestID, models.FriendRequestAccepted)
}

// RejectFriendRequest rejects a pending friend request addressed to userID.
// The rejected row is kept so the sender can try again later.
func (s *FriendService) RejectFriendRequest(ctx context.Context, userID, requestID uint) (*models.FriendRequest, error) {
	return s.respond(ctx, userID, requestID, models.FriendRequestRejected)
}

func (s *FriendService) respond(ctx context.Context, userID, requestID uint, status models.FriendRequestStatus) (*models.FriendRequest, error) {
	if err := s.friendRepo.Respond(ctx, requestID, userID, status); err != nil {
		if errors.Is(err, repository.ErrFriendRequestNotFound) {
			return nil, models.NewNotFoundError("FriendRequest", requestID)
		}
		return nil, err
	}

	observability.FriendRequestTransitions.WithLabelValues(string(status)).Inc()
	cache.InvalidateRequestsView(ctx, userID)
	cache.InvalidateFriendsView(ctx, userID)

	request, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	cache.InvalidateFriendsView(ctx, request.RequesterID)
	if status == models.FriendRequestAccepted {
		// New friends change both users' feeds.
		cache.InvalidateFeedViews(ctx)
		if pubErr := s.notifier.PublishRevalidate(ctx, "/", "/friends"); pubErr != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish revalidate event", slog.String("error", pubErr.Error()))
		}
	}

	return request, nil
}

// GetPendingRequests returns pending friend requests addressed to the user.
// The list is cached and invalidated when a request arrives or is answered.
func (s *FriendService) GetPendingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return cache.Aside(ctx, cache.RequestsViewKey(userID), cache.RequestsViewTTL, func() ([]models.FriendRequest, error) {
		return s.friendRepo.GetPendingReceived(ctx, userID)
	})
}

// GetSentRequests returns pending friend requests the user has sent.
func (s *FriendService) GetSentRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.friendRepo.GetSentPending(ctx, userID)
}

// GetFriends returns the list of friends for the user, cached until an
// accepted request invalidates it.
func (s *FriendService) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return cache.Aside(ctx, cache.FriendsViewKey(userID), cache.FriendsViewTTL, func() ([]models.User, error) {
		return s.friendRepo.GetFriends(ctx, userID)
	})
}

// GetFriendStatus returns the relation between two users as "none", "pending",
// or "friends", plus the request ID when one exists. Any non-accepted row reads
// as pending, a rejected one included; only the absence of rows means none.
func (s *FriendService) GetFriendStatus(ctx context.Context, userID, targetUserID uint) (string, uint, error) {
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return "", 0, err
	}

	request, err := s.friendRepo.GetBetween(ctx, userID, targetUserID)
	if err != nil {
		return "", 0, err
	}
	if request == nil {
		return FriendStatusNone, 0, nil
	}
	if request.Status == models.FriendRequestAccepted {
		return FriendStatusFriends, request.ID, nil
	}
	return FriendStatusPending, request.ID, nil
}
