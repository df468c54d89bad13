package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shreyea/write/internal/models"
	"github.com/shreyea/write/internal/notifications"
	"github.com/shreyea/write/internal/repository"
	"github.com/shreyea/write/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFollowRepository is a mock of the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Follow(ctx context.Context, followerID, followingID uint) error {
	args := m.Called(ctx, followerID, followingID)
	return args.Error(0)
}

func (m *MockFollowRepository) Unfollow(ctx context.Context, followerID, followingID uint) error {
	args := m.Called(ctx, followerID, followingID)
	return args.Error(0)
}

func (m *MockFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func newUserTestServer(userRepo *MockUserRepository, postRepo *MockPostRepository, friendRepo *MockFriendRepository, followRepo *MockFollowRepository) *Server {
	s := &Server{}
	notifier := notifications.NewNotifier(nil)
	s.userService = service.NewUserService(userRepo, postRepo, friendRepo, followRepo, notifier)
	s.followService = service.NewFollowService(followRepo, userRepo)
	return s
}

func TestUpdateUsername(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(userRepo *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{"username": "new_name"},
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("UsernameTaken", mock.Anything, "new_name").Return(false, nil)
				userRepo.On("GetByID", mock.Anything, uint(1)).
					Return(&models.User{ID: 1, Username: "old_name"}, nil).Once()
				userRepo.On("SetUsername", mock.Anything, uint(1), "new_name").Return(nil)
				userRepo.On("GetByID", mock.Anything, uint(1)).
					Return(&models.User{ID: 1, Username: "new_name", UsernameChanged: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Taken",
			body: map[string]string{"username": "taken_name"},
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("UsernameTaken", mock.Anything, "taken_name").Return(true, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid characters",
			body:           map[string]string{"username": "bad name!"},
			mockSetup:      func(userRepo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Too short",
			body:           map[string]string{"username": "ab"},
			mockSetup:      func(userRepo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			tt.mockSetup(userRepo)
			s := newUserTestServer(userRepo, new(MockPostRepository), new(MockFriendRepository), new(MockFollowRepository))

			app := fiber.New()
			withAuthedUser(app, 1)
			app.Put("/users/me/username", s.UpdateUsername)

			payload, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPut, "/users/me/username", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			userRepo.AssertExpectations(t)
		})
	}
}

func TestUpdateUsername_SecondChangeRejected(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("UsernameTaken", mock.Anything, "another").Return(false, nil)
	userRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "first", UsernameChanged: true}, nil)
	userRepo.On("SetUsername", mock.Anything, uint(1), "another").
		Return(repository.ErrUsernameAlreadySet)

	s := newUserTestServer(userRepo, new(MockPostRepository), new(MockFriendRepository), new(MockFollowRepository))
	app := fiber.New()
	withAuthedUser(app, 1)
	app.Put("/users/me/username", s.UpdateUsername)

	payload, _ := json.Marshal(map[string]string{"username": "another"})
	req := httptest.NewRequest(http.MethodPut, "/users/me/username", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckUsername(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		mockSetup     func(userRepo *MockUserRepository)
		wantAvailable bool
	}{
		{
			name:  "Available",
			query: "fresh_name",
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("UsernameTaken", mock.Anything, "fresh_name").Return(false, nil)
			},
			wantAvailable: true,
		},
		{
			name:  "Taken",
			query: "taken_name",
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("UsernameTaken", mock.Anything, "taken_name").Return(true, nil)
			},
			wantAvailable: false,
		},
		{
			name:          "Invalid format answers unavailable",
			query:         "no spaces",
			mockSetup:     func(userRepo *MockUserRepository) {},
			wantAvailable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			tt.mockSetup(userRepo)
			s := newUserTestServer(userRepo, new(MockPostRepository), new(MockFriendRepository), new(MockFollowRepository))

			app := fiber.New()
			withAuthedUser(app, 1)
			app.Get("/users/username-available", s.CheckUsername)

			req := httptest.NewRequest(http.MethodGet,
				"/users/username-available?username="+url.QueryEscape(tt.query), nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				Available bool `json:"available"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantAvailable, body.Available)
			userRepo.AssertExpectations(t)
		})
	}
}

func TestGetMyProfile_ProvisionsOnFirstContact(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", mock.Anything, "reader@example.com").Return(nil, nil).Once()
	userRepo.On("UsernameTaken", mock.Anything, "reader").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 7
		}).Return(nil)

	s := newUserTestServer(userRepo, new(MockPostRepository), new(MockFriendRepository), new(MockFollowRepository))
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		c.Locals("userEmail", "reader@example.com")
		return c.Next()
	})
	app.Get("/users/me", s.GetMyProfile)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "reader", user.Username)
	assert.Equal(t, "reader@example.com", user.Email)
	userRepo.AssertExpectations(t)
}

func TestGetProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	friendRepo := new(MockFriendRepository)
	followRepo := new(MockFollowRepository)

	userRepo.On("GetByUsername", mock.Anything, "alice").
		Return(&models.User{ID: 2, Username: "alice"}, nil)
	postRepo.On("GetByUserID", mock.Anything, uint(2), 100, 0, uint(1)).
		Return([]*models.Post{{ID: 1, UserID: 2, Content: "hi"}}, nil)
	friendRepo.On("GetFriends", mock.Anything, uint(2)).
		Return([]models.User{{ID: 3}}, nil)
	followRepo.On("CountFollowers", mock.Anything, uint(2)).Return(int64(4), nil)
	followRepo.On("CountFollowing", mock.Anything, uint(2)).Return(int64(6), nil)

	s := newUserTestServer(userRepo, postRepo, friendRepo, followRepo)
	app := fiber.New()
	withAuthedUser(app, 1)
	app.Get("/profiles/:username", s.GetProfile)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profiles/alice", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var profile models.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 1, profile.FriendsCount)
	assert.Equal(t, int64(4), profile.FollowersCount)
	assert.Equal(t, int64(6), profile.FollowingCount)
	require.Len(t, profile.Posts, 1)
}

func TestGetFollowStatus(t *testing.T) {
	followRepo := new(MockFollowRepository)
	followRepo.On("IsFollowing", mock.Anything, uint(1), uint(2)).Return(true, nil)

	s := newUserTestServer(new(MockUserRepository), new(MockPostRepository), new(MockFriendRepository), followRepo)
	app := fiber.New()
	withAuthedUser(app, 1)
	app.Get("/follow/status/:userId", s.GetFollowStatus)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/follow/status/2", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Following bool `json:"following"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Following)
	followRepo.AssertExpectations(t)
}

func TestFollow(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		mockSetup      func(userRepo *MockUserRepository, followRepo *MockFollowRepository)
		expectedStatus int
	}{
		{
			name: "Follow",
			body: map[string]interface{}{"action": "follow", "targetUserId": 2},
			mockSetup: func(userRepo *MockUserRepository, followRepo *MockFollowRepository) {
				userRepo.On("GetByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil)
				followRepo.On("Follow", mock.Anything, uint(1), uint(2)).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Unfollow",
			body: map[string]interface{}{"action": "unfollow", "targetUserId": 2},
			mockSetup: func(userRepo *MockUserRepository, followRepo *MockFollowRepository) {
				userRepo.On("GetByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil)
				followRepo.On("Unfollow", mock.Anything, uint(1), uint(2)).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown action",
			body:           map[string]interface{}{"action": "block", "targetUserId": 2},
			mockSetup:      func(userRepo *MockUserRepository, followRepo *MockFollowRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Follow self",
			body: map[string]interface{}{"action": "follow", "targetUserId": 1},
			mockSetup: func(userRepo *MockUserRepository, followRepo *MockFollowRepository) {
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing target",
			body:           map[string]interface{}{"action": "follow"},
			mockSetup:      func(userRepo *MockUserRepository, followRepo *MockFollowRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			followRepo := new(MockFollowRepository)
			tt.mockSetup(userRepo, followRepo)
			s := newUserTestServer(userRepo, new(MockPostRepository), new(MockFriendRepository), followRepo)

			app := fiber.New()
			withAuthedUser(app, 1)
			app.Post("/follow", s.Follow)

			payload, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/follow", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			followRepo.AssertExpectations(t)
		})
	}
}
