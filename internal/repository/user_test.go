package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shreyea/write/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_SetUsername(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	u := newTestUser(t, "su")
	fresh := fmt.Sprintf("picked_%d", time.Now().UnixNano())

	require.NoError(t, repo.SetUsername(ctx, u.ID, fresh))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh, got.Username)
	assert.True(t, got.UsernameChanged)

	// The second change loses the conditional update.
	err = repo.SetUsername(ctx, u.ID, "second_try")
	assert.ErrorIs(t, err, ErrUsernameAlreadySet)

	// A missing user maps to not found, not to the already-set error.
	err = repo.SetUsername(ctx, 999999999, "ghost")
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUserRepository_UsernameTakenIsCaseInsensitive(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	u := newTestUser(t, "CaseUser")

	taken, err := repo.UsernameTaken(ctx, strings.ToUpper(u.Username))
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.UsernameTaken(ctx, "caseuser_nope")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepository_GetByEmailMissingIsNil(t *testing.T) {
	repo := NewUserRepository(testDB)

	user, err := repo.GetByEmail(context.Background(), "nobody@nowhere.example")
	require.NoError(t, err)
	assert.Nil(t, user)
}
