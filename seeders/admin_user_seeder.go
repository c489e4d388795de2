package seeders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/pkg/config"
	apperrors "equipment-store/pkg/errors"
)

// SeedAdmin creates the configured superuser unless the username is taken.
func (s *Seeder) SeedAdmin(ctx context.Context, cfg config.SeedConfig) error {
	s.logger.Info("seeding superuser", zap.String("username", cfg.AdminUsername))

	_, err := s.userRepo.FindUserByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		s.logger.Info("superuser already exists, skipping", zap.String("username", cfg.AdminUsername))
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("look up %q: %w", cfg.AdminUsername, err)
	}

	_, err = s.userService.CreateUser(ctx, dto.CreateUserDTO{
		Username:        cfg.AdminUsername,
		Email:           cfg.AdminEmail,
		Password:        cfg.AdminPassword,
		PasswordConfirm: cfg.AdminPassword,
		Admin:           true,
	})
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	return nil
}
