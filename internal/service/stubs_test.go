package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shreyea/write/internal/cache"
	"github.com/shreyea/write/internal/models"
)

// withTestRedis points the view cache at a throwaway miniredis for the test.
func withTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	usernameTakenFn func(context.Context, string) (bool, error)
	setUsernameFn   func(context.Context, uint, string) error
	updateAvatarFn  func(context.Context, uint, string) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.usernameTakenFn(ctx, username)
}
func (s *userRepoStub) SetUsername(ctx context.Context, userID uint, username string) error {
	return s.setUsernameFn(ctx, userID, username)
}
func (s *userRepoStub) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) error {
	return s.updateAvatarFn(ctx, userID, avatarURL)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(context.Context, *models.User) error { return nil },
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		usernameTakenFn: func(context.Context, string) (bool, error) { return false, nil },
		setUsernameFn:   func(context.Context, uint, string) error { return nil },
		updateAvatarFn:  func(context.Context, uint, string) error { return nil },
	}
}

type friendRepoStub struct {
	createRequestFn      func(context.Context, uint, uint) (*models.FriendRequest, error)
	getByIDFn            func(context.Context, uint) (*models.FriendRequest, error)
	getActiveBetweenFn   func(context.Context, uint, uint) (*models.FriendRequest, error)
	getBetweenFn         func(context.Context, uint, uint) (*models.FriendRequest, error)
	getPendingReceivedFn func(context.Context, uint) ([]models.FriendRequest, error)
	getSentPendingFn     func(context.Context, uint) ([]models.FriendRequest, error)
	getFriendsFn         func(context.Context, uint) ([]models.User, error)
	respondFn            func(context.Context, uint, uint, models.FriendRequestStatus) error
}

func (s *friendRepoStub) CreateRequest(ctx context.Context, requesterID, receiverID uint) (*models.FriendRequest, error) {
	return s.createRequestFn(ctx, requesterID, receiverID)
}
func (s *friendRepoStub) GetByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	return s.getByIDFn(ctx, id)
}
func (s *friendRepoStub) GetActiveBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	return s.getActiveBetweenFn(ctx, a, b)
}
func (s *friendRepoStub) GetBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	return s.getBetweenFn(ctx, a, b)
}
func (s *friendRepoStub) GetPendingReceived(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.getPendingReceivedFn(ctx, userID)
}
func (s *friendRepoStub) GetSentPending(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.getSentPendingFn(ctx, userID)
}
func (s *friendRepoStub) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFriendsFn(ctx, userID)
}
func (s *friendRepoStub) Respond(ctx context.Context, requestID, receiverID uint, status models.FriendRequestStatus) error {
	return s.respondFn(ctx, requestID, receiverID, status)
}

func noopFriendRepo() *friendRepoStub {
	return &friendRepoStub{
		createRequestFn: func(context.Context, uint, uint) (*models.FriendRequest, error) {
			return &models.FriendRequest{Status: models.FriendRequestPending}, nil
		},
		getByIDFn: func(context.Context, uint) (*models.FriendRequest, error) {
			return &models.FriendRequest{}, nil
		},
		getActiveBetweenFn:   func(context.Context, uint, uint) (*models.FriendRequest, error) { return nil, nil },
		getBetweenFn:         func(context.Context, uint, uint) (*models.FriendRequest, error) { return nil, nil },
		getPendingReceivedFn: func(context.Context, uint) ([]models.FriendRequest, error) { return nil, nil },
		getSentPendingFn:     func(context.Context, uint) ([]models.FriendRequest, error) { return nil, nil },
		getFriendsFn:         func(context.Context, uint) ([]models.User, error) { return nil, nil },
		respondFn:            func(context.Context, uint, uint, models.FriendRequestStatus) error { return nil },
	}
}

type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	feedFn        func(context.Context, uint) ([]*models.Post, error)
	deleteOwnedFn func(context.Context, uint, uint) error
	isLikedFn     func(context.Context, uint, uint) (bool, error)
	likeFn        func(context.Context, uint, uint) error
	unlikeFn      func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) Feed(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.feedFn(ctx, userID)
}
func (s *postRepoStub) DeleteOwned(ctx context.Context, id, userID uint) error {
	return s.deleteOwnedFn(ctx, id, userID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(context.Context, *models.Post) error { return nil },
		getByIDFn:     func(context.Context, uint, uint) (*models.Post, error) { return &models.Post{}, nil },
		getByUserIDFn: func(context.Context, uint, int, int, uint) ([]*models.Post, error) { return nil, nil },
		feedFn:        func(context.Context, uint) ([]*models.Post, error) { return nil, nil },
		deleteOwnedFn: func(context.Context, uint, uint) error { return nil },
		isLikedFn:     func(context.Context, uint, uint) (bool, error) { return false, nil },
		likeFn:        func(context.Context, uint, uint) error { return nil },
		unlikeFn:      func(context.Context, uint, uint) error { return nil },
	}
}

type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	getByPostIDFn func(context.Context, uint, int, int) ([]*models.Comment, error)
	deleteOwnedFn func(context.Context, uint, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetByPostID(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.getByPostIDFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) DeleteOwned(ctx context.Context, id, userID uint) error {
	return s.deleteOwnedFn(ctx, id, userID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(context.Context, *models.Comment) error { return nil },
		getByIDFn:     func(context.Context, uint) (*models.Comment, error) { return &models.Comment{}, nil },
		getByPostIDFn: func(context.Context, uint, int, int) ([]*models.Comment, error) { return nil, nil },
		deleteOwnedFn: func(context.Context, uint, uint) error { return nil },
	}
}

type followRepoStub struct {
	followFn         func(context.Context, uint, uint) error
	unfollowFn       func(context.Context, uint, uint) error
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) error {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) error {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:         func(context.Context, uint, uint) error { return nil },
		unfollowFn:       func(context.Context, uint, uint) error { return nil },
		isFollowingFn:    func(context.Context, uint, uint) (bool, error) { return false, nil },
		countFollowersFn: func(context.Context, uint) (int64, error) { return 0, nil },
		countFollowingFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}
