package services

import (
	"context"
	"errors"
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

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context, typeRef string, listing constants.EquipmentFilter, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	SearchEquipments(ctx context.Context, typeRef string, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	FindEquipment(ctx context.Context, typeRef string, id uint64) (*dto.EquipmentDetailDTO, error)
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error)
	UpdateEquipment(ctx context.Context, typeRef string, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentUpdateResultDTO, error)
	DeleteEquipment(ctx context.Context, typeRef string, id uint64) error
	GetUnassignedIDs(ctx context.Context, typeRef string) ([][2]interface{}, error)
	NextLabel(ctx context.Context, typeRef string) (string, error)
}

type EquipmentService struct {
	txManager         repositories.TxManagerInterface
	equipmentRepo     repositories.EquipmentRepositoryInterface
	equipmentTypeRepo repositories.EquipmentTypeRepositoryInterface
	allocationRepo    repositories.AllocationRepositoryInterface
	counter           RemainingCounterInterface
	logger            *zap.Logger
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	equipmentTypeRepo repositories.EquipmentTypeRepositoryInterface,
	allocationRepo repositories.AllocationRepositoryInterface,
	counter RemainingCounterInterface,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		txManager:         txManager,
		equipmentRepo:     equipmentRepo,
		equipmentTypeRepo: equipmentTypeRepo,
		allocationRepo:    allocationRepo,
		counter:           counter,
		logger:            logger,
	}
}

func equipmentEntityToDTO(e *entities.Equipment) dto.EquipmentDTO {
	res := dto.EquipmentDTO{
		ID:           e.ID,
		Label:        e.Label,
		SerialNumber: e.SerialNumber,
		ModelNumber:  e.ModelNumber,
		Brand:        e.Brand,
		Price:        e.Price,
		BuyDate:      utils.FormatDate(e.BuyDate),
		UnderRepair:  e.UnderRepair,
		Functional:   e.Functional,
		Status:       Classify(e, e.LatestAllocation).String(),
		CreatedAt:    utils.FormatTimestamp(e.CreatedAt),
		UpdatedAt:    utils.FormatTimestamp(e.UpdatedAt),
	}
	res.EquipmentType = dto.ShortEquipmentTypeDTO{ID: e.EquipmentTypeID}
	if e.EquipmentType != nil {
		res.EquipmentType.Name = e.EquipmentType.Name
	}
	if a := e.LatestAllocation; a != nil && !a.Returned {
		res.CurrentUser = &dto.ShortUserDTO{ID: a.UserID, Username: a.Username}
	}
	return res
}

func equipmentEntitiesToDTOs(list []*entities.Equipment) []dto.EquipmentDTO {
	res := make([]dto.EquipmentDTO, 0, len(list))
	for _, e := range list {
		res = append(res, equipmentEntityToDTO(e))
	}
	return res
}

// findInType loads a unit and checks that it belongs to the type named by
// typeRef; a unit of another type is reported as not found.
func (s *EquipmentService) findInType(ctx context.Context, tx pgx.Tx, typeRef string, id uint64, lock bool) (*entities.Equipment, error) {
	et, err := s.equipmentTypeRepo.ResolveEquipmentType(ctx, tx, typeRef)
	if err != nil {
		return nil, err
	}
	var e *entities.Equipment
	if lock {
		e, err = s.equipmentRepo.LockEquipment(ctx, tx, id)
	} else {
		e, err = s.equipmentRepo.FindEquipment(ctx, tx, id)
	}
	if err != nil {
		return nil, err
	}
	if e.EquipmentTypeID != et.ID {
		return nil, fmt.Errorf("equipment %d is not a %s: %w", id, et.Name, apperrors.ErrNotFound)
	}
	return e, nil
}

func (s *EquipmentService) GetEquipments(ctx context.Context, typeRef string, listing constants.EquipmentFilter, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	et, err := s.equipmentTypeRepo.ResolveEquipmentType(ctx, nil, typeRef)
	if err != nil {
		return nil, 0, err
	}
	list, total, err := s.equipmentRepo.ListEquipments(ctx, et.ID, listing, filter)
	if err != nil {
		return nil, 0, err
	}
	return equipmentEntitiesToDTOs(list), total, nil
}

// SearchEquipments matches over the working units of the type.
func (s *EquipmentService) SearchEquipments(ctx context.Context, typeRef string, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	if strings.TrimSpace(filter.Search) == "" {
		return nil, 0, apperrors.NewInvalidInputError("search term is required")
	}
	return s.GetEquipments(ctx, typeRef, constants.FilterWorking, filter)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, typeRef string, id uint64) (*dto.EquipmentDetailDTO, error) {
	e, err := s.findInType(ctx, nil, typeRef, id, false)
	if err != nil {
		return nil, err
	}
	history, err := s.allocationRepo.ListByEquipment(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	res := &dto.EquipmentDetailDTO{
		EquipmentDTO: equipmentEntityToDTO(e),
		PastUsers:    make([]dto.ShortUserDTO, 0, len(history)),
	}
	for _, a := range history {
		res.PastUsers = append(res.PastUsers, dto.ShortUserDTO{ID: a.UserID, Username: a.Username})
	}
	return res, nil
}

// CreateEquipment assigns the next label of the type while holding the type
// row lock, so concurrent creates under one type never share a label.
func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error) {
	buyDate, err := utils.ParseDate(payload.BuyDate)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("%v", err)
	}

	var created *entities.Equipment
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		et, err := s.equipmentTypeRepo.LockEquipmentType(ctx, tx, payload.EquipmentTypeID)
		if err != nil {
			return err
		}
		lastLabel, err := s.equipmentRepo.FindLastLabel(ctx, tx, et.ID)
		if err != nil {
			return err
		}
		label, err := NextLabel(et.Name, lastLabel)
		if err != nil {
			return err
		}

		e := &entities.Equipment{
			Label:           label,
			SerialNumber:    strings.TrimSpace(payload.SerialNumber),
			ModelNumber:     strings.TrimSpace(payload.ModelNumber),
			Brand:           strings.TrimSpace(payload.Brand),
			Price:           payload.Price.Decimal,
			BuyDate:         buyDate,
			EquipmentTypeID: et.ID,
			Functional:      true,
		}
		id, err := s.equipmentRepo.CreateEquipment(ctx, tx, e)
		if err != nil {
			return err
		}
		created, err = s.equipmentRepo.FindEquipment(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.EquipmentCreated.Inc()
	s.counter.Invalidate(ctx)
	s.logger.Info("equipment created",
		zap.Uint64("id", created.ID),
		zap.String("label", created.Label),
		zap.Uint64("equipment_type_id", created.EquipmentTypeID),
	)

	res := equipmentEntityToDTO(created)
	return &res, nil
}

func applyEquipmentUpdate(e *entities.Equipment, payload dto.UpdateEquipmentDTO) error {
	setText := func(dst *string, field string, v string) error {
		v = strings.TrimSpace(v)
		if v == "" {
			return apperrors.NewInvalidInputError("%s must not be empty", field)
		}
		*dst = v
		return nil
	}

	if payload.SerialNumber.Valid {
		if err := setText(&e.SerialNumber, "serial_number", payload.SerialNumber.String); err != nil {
			return err
		}
	}
	if payload.ModelNumber.Valid {
		if err := setText(&e.ModelNumber, "model_number", payload.ModelNumber.String); err != nil {
			return err
		}
	}
	if payload.Brand.Valid {
		if err := setText(&e.Brand, "brand", payload.Brand.String); err != nil {
			return err
		}
	}
	if payload.Price.Valid {
		e.Price = payload.Price.Decimal
	}
	if payload.BuyDate.Valid {
		d, err := utils.ParseDate(payload.BuyDate.String)
		if err != nil {
			return apperrors.NewInvalidInputError("%v", err)
		}
		e.BuyDate = d
	}
	if payload.EquipmentTypeID.Valid {
		e.EquipmentTypeID = payload.EquipmentTypeID.Uint64
	}
	if payload.UnderRepair.Valid {
		e.UnderRepair = payload.UnderRepair.Bool
	}
	if payload.Functional.Valid {
		e.Functional = payload.Functional.Bool
	}
	return nil
}

// checkTypeMove locks the target type and rejects the move when the unit's
// label carries the target's prefix, since the target's counter could later
// issue the same label.
func (s *EquipmentService) checkTypeMove(ctx context.Context, tx pgx.Tx, e *entities.Equipment, typeID uint64) error {
	target, err := s.equipmentTypeRepo.LockEquipmentType(ctx, tx, typeID)
	if err != nil {
		return err
	}
	if LabelPrefixOf(e.Label) == LabelPrefix(target.Name) {
		return fmt.Errorf("label %s clashes with %s labels: %w", e.Label, target.Name, apperrors.ErrConflict)
	}
	return nil
}

// UpdateEquipment writes the changes and, when the unit ends up under repair
// or non-functional, closes its latest allocation in the same transaction.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, typeRef string, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentUpdateResultDTO, error) {
	var (
		updated       *entities.Equipment
		forceReturned *uint64
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		e, err := s.findInType(ctx, tx, typeRef, id, true)
		if err != nil {
			return err
		}
		latest := e.LatestAllocation

		if payload.EquipmentTypeID.Valid && payload.EquipmentTypeID.Uint64 != e.EquipmentTypeID {
			if err := s.checkTypeMove(ctx, tx, e, payload.EquipmentTypeID.Uint64); err != nil {
				return err
			}
		}
		if err := applyEquipmentUpdate(e, payload); err != nil {
			return err
		}
		if err := s.equipmentRepo.UpdateEquipment(ctx, tx, e); err != nil {
			return err
		}

		if RequiresForceReturn(e) && latest != nil && !latest.Returned {
			if err := s.allocationRepo.MarkReturned(ctx, tx, latest.ID); err != nil {
				return err
			}
			forceReturned = &latest.ID
		}

		updated, err = s.equipmentRepo.FindEquipment(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.counter.Invalidate(ctx)
	if forceReturned != nil {
		metrics.AllocationsForceReturned.Inc()
		s.logger.Info("allocation force-returned",
			zap.Uint64("equipment_id", id),
			zap.Uint64("allocation_id", *forceReturned),
			zap.Bool("under_repair", updated.UnderRepair),
			zap.Bool("functional", updated.Functional),
		)
	}

	return &dto.EquipmentUpdateResultDTO{
		Equipment:     equipmentEntityToDTO(updated),
		ForceReturned: forceReturned,
	}, nil
}

func (s *EquipmentService) DeleteEquipment(ctx context.Context, typeRef string, id uint64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.findInType(ctx, tx, typeRef, id, true); err != nil {
			return err
		}
		return s.equipmentRepo.DeleteEquipment(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.counter.Invalidate(ctx)
	s.logger.Info("equipment deleted", zap.Uint64("id", id))
	return nil
}

// GetUnassignedIDs lists [id, label] pairs of the units of the type that can
// be allocated, in creation order.
func (s *EquipmentService) GetUnassignedIDs(ctx context.Context, typeRef string) ([][2]interface{}, error) {
	et, err := s.equipmentTypeRepo.ResolveEquipmentType(ctx, nil, typeRef)
	if err != nil {
		return nil, err
	}
	list, err := s.equipmentRepo.ListUnassigned(ctx, et.ID)
	if err != nil {
		return nil, err
	}
	pairs := make([][2]interface{}, 0, len(list))
	for _, e := range list {
		pairs = append(pairs, [2]interface{}{e.ID, e.Label})
	}
	return pairs, nil
}

// NextLabel previews the label the next unit of the type would receive.
func (s *EquipmentService) NextLabel(ctx context.Context, typeRef string) (string, error) {
	et, err := s.equipmentTypeRepo.ResolveEquipmentType(ctx, nil, typeRef)
	if err != nil {
		return "", err
	}
	lastLabel, err := s.equipmentRepo.FindLastLabel(ctx, nil, et.ID)
	if err != nil {
		return "", err
	}
	label, err := NextLabel(et.Name, lastLabel)
	if err != nil {
		if errors.Is(err, apperrors.ErrMalformedLabel) {
			s.logger.Warn("cannot derive next label", zap.Uint64("equipment_type_id", et.ID), zap.String("last_label", lastLabel))
		}
		return "", err
	}
	return label, nil
}
