package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/entities"
	"equipment-store/internal/repositories"
	"equipment-store/pkg/config"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/metrics"
	"equipment-store/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error)
	GetUserByID(ctx context.Context, userID uint64) (*entities.User, error)
}

type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cfg       *config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cfg:       cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, strings.TrimSpace(payload.Username))
	if err != nil {
		metrics.LoginFailures.Inc()
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		metrics.LoginFailures.Inc()
		s.handleFailedLoginAttempt(ctx, user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	s.resetLoginAttempts(ctx, user.ID)
	s.logger.Info("user logged in", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uint64) (*entities.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		s.logger.Warn("GetUserByID: user not found", zap.Uint64("user_id", userID), zap.Error(err))
		return nil, apperrors.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	return user, nil
}

func lockoutKey(userID uint64) string  { return fmt.Sprintf("lockout:%d", userID) }
func attemptsKey(userID uint64) string { return fmt.Sprintf("login_attempts:%d", userID) }

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	// A present key means the account is locked.
	if _, err := s.cacheRepo.Get(ctx, lockoutKey(userID)); err == nil {
		s.logger.Warn("login rejected, account locked", zap.Uint64("user_id", userID))
		return fmt.Errorf("retry in %.0f minutes: %w", s.cfg.LockoutDuration.Minutes(), apperrors.ErrTooManyAttempts)
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	key := attemptsKey(userID)
	attempts, err := s.cacheRepo.Incr(ctx, key)
	if err != nil {
		s.logger.Warn("could not count failed login", zap.Uint64("user_id", userID), zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, key, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		_ = s.cacheRepo.Set(ctx, lockoutKey(userID), "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, key)
		s.logger.Warn("account locked after failed logins", zap.Uint64("user_id", userID), zap.Int64("attempts", attempts))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	_ = s.cacheRepo.Del(ctx, attemptsKey(userID), lockoutKey(userID))
}
