package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shreyea/write/internal/cache"
	"github.com/shreyea/write/internal/middleware"
	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/notifications"
	"github.com/shreyea/write/internal/repository"
	"github.com/shreyea/write/internal/validation"
)

var usernameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// UserService provides profile business logic.
type UserService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	friendRepo repository.FriendRepository
	followRepo repository.FollowRepository
	notifier   *notifications.Notifier
}

// NewUserService returns a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	friendRepo repository.FriendRepository,
	followRepo repository.FollowRepository,
	notifier *notifications.Notifier,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		postRepo:   postRepo,
		friendRepo: friendRepo,
		followRepo: followRepo,
		notifier:   notifier,
	}
}

// EnsureProfile returns the local profile for an authenticated identity,
// creating one on first contact. The initial username is derived from the
// email local part; the user keeps their one-time change.
func (s *UserService) EnsureProfile(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, models.NewValidationError("a valid email is required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	username, err := s.availableUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent first request may have created the profile already.
		if raced, lookupErr := s.userRepo.GetByEmail(ctx, email); lookupErr == nil && raced != nil {
			return raced, nil
		}
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "provisioned profile",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username),
	)
	return user, nil
}

func (s *UserService) availableUsername(ctx context.Context, email string) (string, error) {
	base := usernameSanitizer.ReplaceAllString(strings.Split(email, "@")[0], "_")
	if len(base) > validation.UsernameMaxLen-4 {
		base = base[:validation.UsernameMaxLen-4]
	}
	for len(base) < validation.UsernameMinLen {
		base += "_"
	}

	candidate := base
	for i := 1; i <= 50; i++ {
		if validation.ValidateUsername(candidate) == nil {
			taken, err := s.userRepo.UsernameTaken(ctx, candidate)
			if err != nil {
				return "", err
			}
			if !taken {
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", models.NewInternalError(fmt.Errorf("could not find an available username for %s", email))
}

// GetProfile returns a user's public profile with their posts and counts.
// The assembled view is cached per username and viewer; username changes
// invalidate it, new posts age out with the TTL.
func (s *UserService) GetProfile(ctx context.Context, username string, currentUserID uint) (*models.Profile, error) {
	key := cache.ProfileViewKey(username, currentUserID)
	profile, err := cache.Aside(ctx, key, cache.ProfileViewTTL, func() (*models.Profile, error) {
		return s.buildProfile(ctx, username, currentUserID)
	})
	if err != nil {
		return nil, err
	}

	// Relative ages are rendered on the way out so cached entries stay raw.
	now := time.Now()
	for _, p := range profile.Posts {
		p.Decorate(now)
	}
	return profile, nil
}

func (s *UserService) buildProfile(ctx context.Context, username string, currentUserID uint) (*models.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetByUserID(ctx, user.ID, 100, 0, currentUserID)
	if err != nil {
		return nil, err
	}

	friends, err := s.friendRepo.GetFriends(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		User:           *user,
		Posts:          posts,
		FriendsCount:   len(friends),
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}

// UsernameAvailable reports whether a username passes validation and is
// unclaimed. A format failure is returned as a validation error so callers
// can surface the reason.
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return false, models.NewValidationError(err.Error())
	}
	taken, err := s.userRepo.UsernameTaken(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// SetUsername applies the user's one-time username change.
func (s *UserService) SetUsername(ctx context.Context, userID uint, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	taken, err := s.userRepo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewValidationError("username is already taken")
	}

	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldUsername := current.Username

	if err := s.userRepo.SetUsername(ctx, userID, username); err != nil {
		if errors.Is(err, repository.ErrUsernameAlreadySet) {
			return nil, models.NewValidationError("username can only be changed once")
		}
		return nil, err
	}

	cache.InvalidateProfileView(ctx, oldUsername)
	cache.InvalidateProfileView(ctx, username)
	if pubErr := s.notifier.PublishRevalidate(ctx, "/", "/profile/"+username); pubErr != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish revalidate event", slog.String("error", pubErr.Error()))
	}

	return s.userRepo.GetByID(ctx, userID)
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
