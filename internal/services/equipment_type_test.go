package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/entities"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/types"
)

type failingCounter struct{ countingCounter }

func (failingCounter) Remaining(ctx context.Context) (map[uint64]uint64, error) {
	return nil, errors.New("redis down")
}

func TestGetEquipmentTypes_AttachesRemaining(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEquipmentTypeRepo)
	filter := types.Filter{Limit: 25, WithPagination: true}
	repo.On("GetEquipmentTypes", ctx, filter).Return([]*entities.EquipmentType{
		{ID: 1, Name: "Laptop"},
		{ID: 2, Name: "Monitor"},
	}, uint64(2), nil)

	counter := &countingCounter{counts: map[uint64]uint64{1: 3}}
	svc := NewEquipmentTypeService(fakeTxManager{}, repo, counter, zap.NewNop())

	list, total, err := svc.GetEquipmentTypes(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	assert.Equal(t, uint64(3), list[0].Remaining)
	assert.Equal(t, uint64(0), list[1].Remaining)
}

func TestGetEquipmentTypes_CounterFailureShowsZeros(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEquipmentTypeRepo)
	repo.On("GetEquipmentTypes", ctx, mock.Anything).Return([]*entities.EquipmentType{{ID: 1, Name: "Laptop"}}, uint64(1), nil)

	svc := NewEquipmentTypeService(fakeTxManager{}, repo, &failingCounter{}, zap.NewNop())

	list, _, err := svc.GetEquipmentTypes(ctx, types.Filter{})
	require.NoError(t, err)
	assert.Zero(t, list[0].Remaining)
}

func TestCreateEquipmentType(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEquipmentTypeRepo)
	repo.On("CreateEquipmentType", ctx, mock.Anything, entities.EquipmentType{Name: "Laptop"}).Return(uint64(1), nil)
	repo.On("FindEquipmentType", ctx, mock.Anything, uint64(1)).Return(&entities.EquipmentType{ID: 1, Name: "Laptop"}, nil)

	svc := NewEquipmentTypeService(fakeTxManager{}, repo, &countingCounter{}, zap.NewNop())

	res, err := svc.CreateEquipmentType(ctx, dto.CreateEquipmentTypeDTO{Name: "  Laptop "})
	require.NoError(t, err)
	assert.Equal(t, "Laptop", res.Name)
}

func TestCreateEquipmentType_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEquipmentTypeRepo)
	repo.On("CreateEquipmentType", ctx, mock.Anything, mock.Anything).Return(uint64(0), apperrors.ErrConflict)

	svc := NewEquipmentTypeService(fakeTxManager{}, repo, &countingCounter{}, zap.NewNop())

	_, err := svc.CreateEquipmentType(ctx, dto.CreateEquipmentTypeDTO{Name: "laptop"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteEquipmentType_InvalidatesCounters(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEquipmentTypeRepo)
	repo.On("DeleteEquipmentType", ctx, mock.Anything, uint64(1)).Return(nil)

	counter := &countingCounter{}
	svc := NewEquipmentTypeService(fakeTxManager{}, repo, counter, zap.NewNop())

	require.NoError(t, svc.DeleteEquipmentType(ctx, 1))
	assert.Equal(t, 1, counter.invalidated)
}

func TestUserService_CreateHashesPassword(t *testing.T) {
	ctx := context.Background()
	repo := new(mockUserRepo)
	repo.On("CreateUser", ctx, mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
		return u.Username == "alice" && u.Password != "s3cret!" && u.IsActive && !u.IsSuperuser
	})).Return(uint64(3), nil)
	repo.On("FindUserByID", ctx, uint64(3)).Return(&entities.User{ID: 3, Username: "alice", IsActive: true}, nil)

	svc := NewUserService(fakeTxManager{}, repo, &countingCounter{}, zap.NewNop())

	res, err := svc.CreateUser(ctx, dto.CreateUserDTO{
		Username: "alice", Email: "alice@example.com", Password: "s3cret!", PasswordConfirm: "s3cret!",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.ID)
	repo.AssertExpectations(t)
}

func TestUserService_DeleteInvalidatesCounters(t *testing.T) {
	ctx := context.Background()
	repo := new(mockUserRepo)
	repo.On("DeleteUser", ctx, uint64(3)).Return(nil)

	counter := &countingCounter{}
	svc := NewUserService(fakeTxManager{}, repo, counter, zap.NewNop())

	require.NoError(t, svc.DeleteUser(ctx, 3))
	assert.Equal(t, 1, counter.invalidated)
}
