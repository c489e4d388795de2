package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/entities"
	"equipment-store/pkg/config"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/utils"
)

func newAuthFixture(t *testing.T, active bool) (*mockUserRepo, *memoryCache, AuthServiceInterface) {
	t.Helper()
	hash, err := utils.HashPassword("s3cret!")
	require.NoError(t, err)

	repo := new(mockUserRepo)
	repo.On("FindUserByUsername", mock.Anything, "alice").
		Return(&entities.User{ID: 3, Username: "alice", Password: hash, IsActive: active}, nil)
	repo.On("FindUserByUsername", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	cache := newMemoryCache()
	cfg := &config.AuthConfig{MaxLoginAttempts: 3, LockoutDuration: 15 * time.Minute}
	return repo, cache, NewAuthService(repo, cache, zap.NewNop(), cfg)
}

func TestLogin_Success(t *testing.T) {
	_, _, svc := newAuthFixture(t, true)

	user, err := svc.Login(context.Background(), dto.LoginDTO{Username: " alice ", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), user.ID)
}

func TestLogin_UnknownUser(t *testing.T) {
	_, _, svc := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), dto.LoginDTO{Username: "mallory", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	_, cache, svc := newAuthFixture(t, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "wrong"})
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "s3cret!"})
	require.ErrorIs(t, err, apperrors.ErrTooManyAttempts)
	assert.Equal(t, 429, apperrors.StatusOf(err))

	// Lockout expiry.
	require.NoError(t, cache.Del(ctx, "lockout:3"))
	_, err = svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "s3cret!"})
	assert.NoError(t, err)
}

func TestLogin_SuccessResetsAttempts(t *testing.T) {
	_, cache, svc := newAuthFixture(t, true)
	ctx := context.Background()

	_, _ = svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "wrong"})
	_, err := cache.Get(ctx, "login_attempts:3")
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "s3cret!"})
	require.NoError(t, err)
	_, err = cache.Get(ctx, "login_attempts:3")
	assert.Error(t, err)
}

func TestLogin_InactiveUser(t *testing.T) {
	_, _, svc := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), dto.LoginDTO{Username: "alice", Password: "s3cret!"})
	assert.ErrorIs(t, err, apperrors.ErrUserInactive)
}
