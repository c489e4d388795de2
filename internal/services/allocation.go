package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/entities"
	"equipment-store/internal/repositories"
	"equipment-store/pkg/constants"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/metrics"
	"equipment-store/pkg/types"
	"equipment-store/pkg/utils"
)

type AllocationServiceInterface interface {
	GetAllocations(ctx context.Context, filter types.Filter) ([]dto.AllocationDTO, uint64, error)
	SearchAllocations(ctx context.Context, filter types.Filter) ([]dto.AllocationDTO, uint64, error)
	CreateAllocation(ctx context.Context, payload dto.CreateAllocationDTO) (*dto.AllocationDTO, error)
	UpdateAllocation(ctx context.Context, id uint64, payload dto.UpdateAllocationDTO) (*dto.AllocationDTO, error)
	DeleteAllocation(ctx context.Context, id uint64) error
}

type AllocationService struct {
	txManager      repositories.TxManagerInterface
	allocationRepo repositories.AllocationRepositoryInterface
	equipmentRepo  repositories.EquipmentRepositoryInterface
	counter        RemainingCounterInterface
	logger         *zap.Logger
}

func NewAllocationService(
	txManager repositories.TxManagerInterface,
	allocationRepo repositories.AllocationRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	counter RemainingCounterInterface,
	logger *zap.Logger,
) AllocationServiceInterface {
	return &AllocationService{
		txManager:      txManager,
		allocationRepo: allocationRepo,
		equipmentRepo:  equipmentRepo,
		counter:        counter,
		logger:         logger,
	}
}

func allocationEntityToDTO(a *entities.Allocation) dto.AllocationDTO {
	return dto.AllocationDTO{
		ID:            a.ID,
		User:          dto.ShortUserDTO{ID: a.UserID, Username: a.Username},
		Equipment:     dto.ShortEquipmentDTO{ID: a.EquipmentID, Label: a.EquipmentLabel},
		EquipmentType: a.EquipmentType,
		Returned:      a.Returned,
		CreatedAt:     utils.FormatTimestamp(a.CreatedAt),
		UpdatedAt:     utils.FormatTimestamp(a.UpdatedAt),
	}
}

func allocationEntitiesToDTOs(list []*entities.Allocation) []dto.AllocationDTO {
	res := make([]dto.AllocationDTO, 0, len(list))
	for _, a := range list {
		res = append(res, allocationEntityToDTO(a))
	}
	return res
}

// newerThan orders allocations by (created_at, id).
func newerThan(a, b *entities.Allocation) bool {
	if a.CreatedAt != nil && b.CreatedAt != nil && !a.CreatedAt.Equal(*b.CreatedAt) {
		return a.CreatedAt.After(*b.CreatedAt)
	}
	return a.ID > b.ID
}

// ensureAssignable locks the unit and checks that it can take an open
// allocation. self is the allocation being reopened or moved, nil on create.
func (s *AllocationService) ensureAssignable(ctx context.Context, tx pgx.Tx, equipmentID uint64, self *entities.Allocation) (*entities.Equipment, error) {
	e, err := s.equipmentRepo.LockEquipment(ctx, tx, equipmentID)
	if err != nil {
		return nil, err
	}

	latest := e.LatestAllocation
	if self != nil && latest != nil && latest.ID == self.ID {
		latest = nil
	}
	if status := Classify(e, latest); status != constants.EquipmentAvailable {
		return nil, fmt.Errorf("equipment %s is %s: %w", e.Label, status, apperrors.ErrEquipmentUnavailable)
	}
	// A reopened allocation must stay the latest one of its unit.
	if self != nil && latest != nil && newerThan(latest, self) {
		return nil, fmt.Errorf("equipment %s has a newer allocation: %w", e.Label, apperrors.ErrConflict)
	}
	return e, nil
}

// ensureBehindOpen locks the unit a returned allocation is moved to. An open
// allocation on that unit must remain its latest one.
func (s *AllocationService) ensureBehindOpen(ctx context.Context, tx pgx.Tx, equipmentID uint64, self *entities.Allocation) error {
	e, err := s.equipmentRepo.LockEquipment(ctx, tx, equipmentID)
	if err != nil {
		return err
	}
	latest := e.LatestAllocation
	if latest != nil && latest.ID != self.ID && !latest.Returned && newerThan(self, latest) {
		return fmt.Errorf("equipment %s has an open allocation older than %d: %w", e.Label, self.ID, apperrors.ErrConflict)
	}
	return nil
}

func (s *AllocationService) GetAllocations(ctx context.Context, filter types.Filter) ([]dto.AllocationDTO, uint64, error) {
	list, total, err := s.allocationRepo.ListOpenAllocations(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return allocationEntitiesToDTOs(list), total, nil
}

func (s *AllocationService) SearchAllocations(ctx context.Context, filter types.Filter) ([]dto.AllocationDTO, uint64, error) {
	if strings.TrimSpace(filter.Search) == "" {
		return nil, 0, apperrors.NewInvalidInputError("search term is required")
	}
	return s.GetAllocations(ctx, filter)
}

func (s *AllocationService) CreateAllocation(ctx context.Context, payload dto.CreateAllocationDTO) (*dto.AllocationDTO, error) {
	var created *entities.Allocation
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		e, err := s.ensureAssignable(ctx, tx, payload.EquipmentID, nil)
		if err != nil {
			return err
		}
		if payload.EquipmentTypeID != 0 && payload.EquipmentTypeID != e.EquipmentTypeID {
			return fmt.Errorf("equipment %s is not of type %d: %w", e.Label, payload.EquipmentTypeID, apperrors.ErrTypeMismatch)
		}

		a := &entities.Allocation{EquipmentID: e.ID, UserID: payload.UserID}
		id, err := s.allocationRepo.CreateAllocation(ctx, tx, a)
		if err != nil {
			return err
		}
		created, err = s.allocationRepo.FindAllocation(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.AllocationsCreated.Inc()
	s.counter.Invalidate(ctx)
	s.logger.Info("allocation created",
		zap.Uint64("id", created.ID),
		zap.Uint64("equipment_id", created.EquipmentID),
		zap.Uint64("user_id", created.UserID),
	)

	res := allocationEntityToDTO(created)
	return &res, nil
}

// UpdateAllocation returns, reopens or reassigns an allocation. Any change
// that leaves it open on a unit re-checks that unit's availability.
func (s *AllocationService) UpdateAllocation(ctx context.Context, id uint64, payload dto.UpdateAllocationDTO) (*dto.AllocationDTO, error) {
	var updated *entities.Allocation
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		a, err := s.allocationRepo.FindAllocation(ctx, tx, id)
		if err != nil {
			return err
		}
		wasReturned := a.Returned
		previousEquipment := a.EquipmentID

		if payload.UserID.Valid {
			a.UserID = payload.UserID.Uint64
		}
		if payload.EquipmentID.Valid {
			a.EquipmentID = payload.EquipmentID.Uint64
		}
		if payload.Returned.Valid {
			a.Returned = payload.Returned.Bool
		}

		switch {
		case !a.Returned && (wasReturned || a.EquipmentID != previousEquipment):
			if _, err := s.ensureAssignable(ctx, tx, a.EquipmentID, a); err != nil {
				return err
			}
		case a.Returned && a.EquipmentID != previousEquipment:
			if err := s.ensureBehindOpen(ctx, tx, a.EquipmentID, a); err != nil {
				return err
			}
		}

		if err := s.allocationRepo.UpdateAllocation(ctx, tx, a); err != nil {
			return err
		}
		updated, err = s.allocationRepo.FindAllocation(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.counter.Invalidate(ctx)
	s.logger.Info("allocation updated", zap.Uint64("id", id), zap.Bool("returned", updated.Returned))

	res := allocationEntityToDTO(updated)
	return &res, nil
}

func (s *AllocationService) DeleteAllocation(ctx context.Context, id uint64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.allocationRepo.DeleteAllocation(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.counter.Invalidate(ctx)
	s.logger.Info("allocation deleted", zap.Uint64("id", id))
	return nil
}
