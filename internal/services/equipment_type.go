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

type EquipmentTypeServiceInterface interface {
	GetEquipmentTypes(ctx context.Context, filter types.Filter) ([]dto.EquipmentTypeDTO, uint64, error)
	SearchEquipmentTypes(ctx context.Context, filter types.Filter) ([]dto.EquipmentTypeDTO, uint64, error)
	FindEquipmentType(ctx context.Context, id uint64) (*dto.EquipmentTypeDTO, error)
	CreateEquipmentType(ctx context.Context, payload dto.CreateEquipmentTypeDTO) (*dto.EquipmentTypeDTO, error)
	UpdateEquipmentType(ctx context.Context, id uint64, payload dto.UpdateEquipmentTypeDTO) (*dto.EquipmentTypeDTO, error)
	DeleteEquipmentType(ctx context.Context, id uint64) error
}

type EquipmentTypeService struct {
	txManager    repositories.TxManagerInterface
	etRepository repositories.EquipmentTypeRepositoryInterface
	counter      RemainingCounterInterface
	logger       *zap.Logger
}

func NewEquipmentTypeService(
	txManager repositories.TxManagerInterface,
	etRepo repositories.EquipmentTypeRepositoryInterface,
	counter RemainingCounterInterface,
	logger *zap.Logger,
) EquipmentTypeServiceInterface {
	return &EquipmentTypeService{
		txManager:    txManager,
		etRepository: etRepo,
		counter:      counter,
		logger:       logger,
	}
}

func etEntityToDTO(entity *entities.EquipmentType, remaining uint64) dto.EquipmentTypeDTO {
	return dto.EquipmentTypeDTO{
		ID:        entity.ID,
		Name:      entity.Name,
		Remaining: remaining,
		CreatedAt: utils.FormatTimestamp(entity.CreatedAt),
		UpdatedAt: utils.FormatTimestamp(entity.UpdatedAt),
	}
}

// remaining never fails the request: without counters the list is still
// useful, so a failure is logged and zeros are shown.
func (s *EquipmentTypeService) remaining(ctx context.Context) map[uint64]uint64 {
	counts, err := s.counter.Remaining(ctx)
	if err != nil {
		s.logger.Error("could not count unassigned equipment", zap.Error(err))
		return map[uint64]uint64{}
	}
	return counts
}

func (s *EquipmentTypeService) GetEquipmentTypes(ctx context.Context, filter types.Filter) ([]dto.EquipmentTypeDTO, uint64, error) {
	list, total, err := s.etRepository.GetEquipmentTypes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	counts := s.remaining(ctx)

	dtos := make([]dto.EquipmentTypeDTO, 0, len(list))
	for _, et := range list {
		dtos = append(dtos, etEntityToDTO(et, counts[et.ID]))
	}
	return dtos, total, nil
}

func (s *EquipmentTypeService) SearchEquipmentTypes(ctx context.Context, filter types.Filter) ([]dto.EquipmentTypeDTO, uint64, error) {
	if strings.TrimSpace(filter.Search) == "" {
		return nil, 0, apperrors.NewInvalidInputError("search term is required")
	}
	return s.GetEquipmentTypes(ctx, filter)
}

func (s *EquipmentTypeService) FindEquipmentType(ctx context.Context, id uint64) (*dto.EquipmentTypeDTO, error) {
	entity, err := s.etRepository.FindEquipmentType(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := etEntityToDTO(entity, s.remaining(ctx)[entity.ID])
	return &res, nil
}

func (s *EquipmentTypeService) CreateEquipmentType(ctx context.Context, payload dto.CreateEquipmentTypeDTO) (*dto.EquipmentTypeDTO, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewInvalidInputError("name must not be empty")
	}

	var created *entities.EquipmentType
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.etRepository.CreateEquipmentType(ctx, tx, entities.EquipmentType{Name: name})
		if err != nil {
			return err
		}
		created, err = s.etRepository.FindEquipmentType(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("equipment type created", zap.Uint64("id", created.ID), zap.String("name", created.Name))
	res := etEntityToDTO(created, 0)
	return &res, nil
}

func (s *EquipmentTypeService) UpdateEquipmentType(ctx context.Context, id uint64, payload dto.UpdateEquipmentTypeDTO) (*dto.EquipmentTypeDTO, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewInvalidInputError("name must not be empty")
	}

	var updated *entities.EquipmentType
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.etRepository.UpdateEquipmentType(ctx, tx, id, name); err != nil {
			return err
		}
		var err error
		updated, err = s.etRepository.FindEquipmentType(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	res := etEntityToDTO(updated, s.remaining(ctx)[updated.ID])
	return &res, nil
}

// DeleteEquipmentType removes the type together with its units and their
// allocations.
func (s *EquipmentTypeService) DeleteEquipmentType(ctx context.Context, id uint64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.etRepository.DeleteEquipmentType(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.counter.Invalidate(ctx)
	s.logger.Info("equipment type deleted", zap.Uint64("id", id))
	return nil
}
