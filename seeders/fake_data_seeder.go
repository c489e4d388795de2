package seeders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	apperrors "equipment-store/pkg/errors"
)

// SeedFakeData fills an empty store with random demo users, types, units and
// allocations.
func (s *Seeder) SeedFakeData(ctx context.Context, rng *rand.Rand) error {
	userIDs, err := s.seedFakeUsers(ctx)
	if err != nil {
		return err
	}
	typeIDs, err := s.seedFakeEquipmentTypes(ctx)
	if err != nil {
		return err
	}
	units, err := s.seedFakeEquipments(ctx, rng, typeIDs)
	if err != nil {
		return err
	}
	return s.seedFakeAllocations(ctx, rng, userIDs, units)
}

func (s *Seeder) seedFakeUsers(ctx context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(fakeFirstNames))
	for i, first := range fakeFirstNames {
		last := fakeLastNames[i]
		password := first + "@1234"
		user, err := s.userService.CreateUser(ctx, dto.CreateUserDTO{
			Username:        first + last + "@123",
			Email:           first + last + "@example.com",
			FirstName:       first,
			LastName:        last,
			Password:        password,
			PasswordConfirm: password,
		})
		if err != nil {
			return nil, fmt.Errorf("create user %s %s: %w", first, last, err)
		}
		ids = append(ids, user.ID)
	}
	s.logger.Info("fake users created", zap.Int("count", len(ids)))
	return ids, nil
}

func (s *Seeder) seedFakeEquipmentTypes(ctx context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(fakeEquipmentTypes))
	for _, name := range fakeEquipmentTypes {
		et, err := s.equipmentTypes.CreateEquipmentType(ctx, dto.CreateEquipmentTypeDTO{Name: name})
		if err != nil {
			return nil, fmt.Errorf("create type %q: %w", name, err)
		}
		ids = append(ids, et.ID)
	}
	s.logger.Info("fake equipment types created", zap.Int("count", len(ids)))
	return ids, nil
}

type fakeUnit struct {
	id       uint64
	typeID   uint64
	working  bool
	assigned bool
}

func (s *Seeder) seedFakeEquipments(ctx context.Context, rng *rand.Rand, typeIDs []uint64) ([]*fakeUnit, error) {
	today := time.Now()
	units := make([]*fakeUnit, 0, fakeEquipmentCount)

	for i := 0; i < fakeEquipmentCount; i++ {
		serial := fmt.Sprintf("%03d", rng.Intn(1000))
		typeID := typeIDs[rng.Intn(len(typeIDs))]

		created, err := s.equipmentService.CreateEquipment(ctx, dto.CreateEquipmentDTO{
			SerialNumber:    serial,
			ModelNumber:     "Model-" + serial,
			Brand:           fakeBrands[rng.Intn(len(fakeBrands))],
			Price:           decimal.NewNullDecimal(decimal.NewFromInt(int64(1000 + rng.Intn(9001)))),
			BuyDate:         today.AddDate(0, 0, -rng.Intn(fakeBuyDateSpanDays)).Format("2006-01-02"),
			EquipmentTypeID: typeID,
		})
		if err != nil {
			return nil, fmt.Errorf("create unit %d: %w", i+1, err)
		}

		unit := &fakeUnit{id: created.ID, typeID: typeID, working: true}
		if rng.Intn(2) == 0 {
			_, err := s.equipmentService.UpdateEquipment(ctx, strconv.FormatUint(typeID, 10), created.ID, dto.UpdateEquipmentDTO{
				Functional: null.BoolFrom(false),
			})
			if err != nil {
				return nil, fmt.Errorf("mark unit %s non-functional: %w", created.Label, err)
			}
			unit.working = false
		}
		units = append(units, unit)
	}
	s.logger.Info("fake equipment created", zap.Int("count", len(units)))
	return units, nil
}

// seedFakeAllocations only picks working units that are not held by anyone,
// so every allocation it opens is one the API would accept.
func (s *Seeder) seedFakeAllocations(ctx context.Context, rng *rand.Rand, userIDs []uint64, units []*fakeUnit) error {
	created := 0
	for attempt := 0; created < fakeAllocationCount && attempt < fakeAllocationCount*10; attempt++ {
		unit := units[rng.Intn(len(units))]
		if !unit.working || unit.assigned {
			continue
		}

		allocation, err := s.allocationService.CreateAllocation(ctx, dto.CreateAllocationDTO{
			UserID:      userIDs[rng.Intn(len(userIDs))],
			EquipmentID: unit.id,
		})
		if errors.Is(err, apperrors.ErrEquipmentUnavailable) {
			continue
		}
		if err != nil {
			return fmt.Errorf("allocate unit %d: %w", unit.id, err)
		}
		created++

		if rng.Intn(2) == 0 {
			if _, err := s.allocationService.UpdateAllocation(ctx, allocation.ID, dto.UpdateAllocationDTO{Returned: null.BoolFrom(true)}); err != nil {
				return fmt.Errorf("return allocation %d: %w", allocation.ID, err)
			}
			continue
		}
		unit.assigned = true
	}
	s.logger.Info("fake allocations created", zap.Int("count", created))
	return nil
}
