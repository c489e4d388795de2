package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "equipment-store/pkg/errors"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour, zap.NewNop())

	access, refresh, err := svc.GenerateTokens(42, true)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.True(t, claims.IsSuperuser)
	assert.False(t, claims.IsRefreshToken)
	assert.NotEmpty(t, claims.ID)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshClaims.IsRefreshToken)
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestValidateTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	expired := NewJWTService("secret", -time.Minute, time.Hour, zap.NewNop())
	access, _, err := expired.GenerateTokens(1, false)
	require.NoError(t, err)

	_, err = expired.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	other := NewJWTService("another-secret", time.Minute, time.Hour, zap.NewNop())
	_, err = other.ValidateToken(access)
	assert.Error(t, err)

	_, err = other.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
