package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/entities"
	"equipment-store/internal/repositories"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/types"
	"equipment-store/pkg/utils"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error)
	SearchUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error)
	FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, id uint64) error
}

type UserService struct {
	txManager      repositories.TxManagerInterface
	userRepository repositories.UserRepositoryInterface
	counter        RemainingCounterInterface
	logger         *zap.Logger
}

func NewUserService(
	txManager repositories.TxManagerInterface,
	userRepository repositories.UserRepositoryInterface,
	counter RemainingCounterInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		txManager:      txManager,
		userRepository: userRepository,
		counter:        counter,
		logger:         logger,
	}
}

func userEntityToDTO(u *entities.User) dto.UserDTO {
	return dto.UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CreatedAt:   utils.FormatTimestamp(u.CreatedAt),
		UpdatedAt:   utils.FormatTimestamp(u.UpdatedAt),
	}
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	users, total, err := s.userRepository.GetUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userEntityToDTO(u))
	}
	return dtos, total, nil
}

func (s *UserService) SearchUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	if strings.TrimSpace(filter.Search) == "" {
		return nil, 0, apperrors.NewInvalidInputError("search term is required")
	}
	return s.GetUsers(ctx, filter)
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	u, err := s.userRepository.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := userEntityToDTO(u)
	return &res, nil
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	hashedPassword, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	entity := &entities.User{
		Username:    strings.TrimSpace(payload.Username),
		Email:       strings.TrimSpace(payload.Email),
		FirstName:   strings.TrimSpace(payload.FirstName),
		LastName:    strings.TrimSpace(payload.LastName),
		Password:    hashedPassword,
		IsSuperuser: payload.Admin,
		IsActive:    true,
	}

	var createdID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var txErr error
		createdID, txErr = s.userRepository.CreateUser(ctx, tx, entity)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	// Timestamps come from the database.
	fresh, err := s.userRepository.FindUserByID(ctx, createdID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.Uint64("id", fresh.ID), zap.String("username", fresh.Username), zap.Bool("is_superuser", fresh.IsSuperuser))

	res := userEntityToDTO(fresh)
	return &res, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error) {
	u, err := s.userRepository.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Username.Valid {
		username := strings.TrimSpace(payload.Username.String)
		if username == "" {
			return nil, apperrors.NewInvalidInputError("username must not be empty")
		}
		u.Username = username
	}
	if payload.Email.Valid {
		u.Email = strings.TrimSpace(payload.Email.String)
	}
	if payload.FirstName.Valid {
		u.FirstName = strings.TrimSpace(payload.FirstName.String)
	}
	if payload.LastName.Valid {
		u.LastName = strings.TrimSpace(payload.LastName.String)
	}

	if err := s.userRepository.UpdateUser(ctx, nil, u); err != nil {
		return nil, err
	}

	fresh, err := s.userRepository.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := userEntityToDTO(fresh)
	return &res, nil
}

// DeleteUser removes the account; its allocations go with it.
func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	if err := s.userRepository.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.counter.Invalidate(ctx)
	s.logger.Info("user deleted", zap.Uint64("id", id))
	return nil
}
