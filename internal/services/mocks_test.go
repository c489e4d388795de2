package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"equipment-store/internal/entities"
	"equipment-store/internal/repositories"
	"equipment-store/pkg/constants"
	"equipment-store/pkg/types"
)

// fakeTxManager runs fn without a transaction; repositories are mocked.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type mockEquipmentRepo struct{ mock.Mock }

func (m *mockEquipmentRepo) FindEquipment(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	args := m.Called(ctx, tx, id)
	e, _ := args.Get(0).(*entities.Equipment)
	return e, args.Error(1)
}

func (m *mockEquipmentRepo) LockEquipment(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	args := m.Called(ctx, tx, id)
	e, _ := args.Get(0).(*entities.Equipment)
	return e, args.Error(1)
}

func (m *mockEquipmentRepo) FindLastLabel(ctx context.Context, tx pgx.Tx, equipmentTypeID uint64) (string, error) {
	args := m.Called(ctx, tx, equipmentTypeID)
	return args.String(0), args.Error(1)
}

func (m *mockEquipmentRepo) ListEquipments(ctx context.Context, equipmentTypeID uint64, listing constants.EquipmentFilter, filter types.Filter) ([]*entities.Equipment, uint64, error) {
	args := m.Called(ctx, equipmentTypeID, listing, filter)
	list, _ := args.Get(0).([]*entities.Equipment)
	return list, args.Get(1).(uint64), args.Error(2)
}

func (m *mockEquipmentRepo) ListUnassigned(ctx context.Context, equipmentTypeID uint64) ([]*entities.Equipment, error) {
	args := m.Called(ctx, equipmentTypeID)
	list, _ := args.Get(0).([]*entities.Equipment)
	return list, args.Error(1)
}

func (m *mockEquipmentRepo) CountUnassignedByType(ctx context.Context) (map[uint64]uint64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[uint64]uint64)
	return counts, args.Error(1)
}

func (m *mockEquipmentRepo) CreateEquipment(ctx context.Context, tx pgx.Tx, e *entities.Equipment) (uint64, error) {
	args := m.Called(ctx, tx, e)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockEquipmentRepo) UpdateEquipment(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	return m.Called(ctx, tx, e).Error(0)
}

func (m *mockEquipmentRepo) DeleteEquipment(ctx context.Context, tx pgx.Tx, id uint64) error {
	return m.Called(ctx, tx, id).Error(0)
}

type mockEquipmentTypeRepo struct{ mock.Mock }

func (m *mockEquipmentTypeRepo) GetEquipmentTypes(ctx context.Context, filter types.Filter) ([]*entities.EquipmentType, uint64, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*entities.EquipmentType)
	return list, args.Get(1).(uint64), args.Error(2)
}

func (m *mockEquipmentTypeRepo) FindEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EquipmentType, error) {
	args := m.Called(ctx, tx, id)
	et, _ := args.Get(0).(*entities.EquipmentType)
	return et, args.Error(1)
}

func (m *mockEquipmentTypeRepo) FindEquipmentTypeByName(ctx context.Context, tx pgx.Tx, name string) (*entities.EquipmentType, error) {
	args := m.Called(ctx, tx, name)
	et, _ := args.Get(0).(*entities.EquipmentType)
	return et, args.Error(1)
}

func (m *mockEquipmentTypeRepo) ResolveEquipmentType(ctx context.Context, tx pgx.Tx, ref string) (*entities.EquipmentType, error) {
	args := m.Called(ctx, tx, ref)
	et, _ := args.Get(0).(*entities.EquipmentType)
	return et, args.Error(1)
}

func (m *mockEquipmentTypeRepo) LockEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EquipmentType, error) {
	args := m.Called(ctx, tx, id)
	et, _ := args.Get(0).(*entities.EquipmentType)
	return et, args.Error(1)
}

func (m *mockEquipmentTypeRepo) CreateEquipmentType(ctx context.Context, tx pgx.Tx, et entities.EquipmentType) (uint64, error) {
	args := m.Called(ctx, tx, et)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockEquipmentTypeRepo) UpdateEquipmentType(ctx context.Context, tx pgx.Tx, id uint64, name string) error {
	return m.Called(ctx, tx, id, name).Error(0)
}

func (m *mockEquipmentTypeRepo) DeleteEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) error {
	return m.Called(ctx, tx, id).Error(0)
}

type mockAllocationRepo struct{ mock.Mock }

func (m *mockAllocationRepo) FindAllocation(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Allocation, error) {
	args := m.Called(ctx, tx, id)
	a, _ := args.Get(0).(*entities.Allocation)
	return a, args.Error(1)
}

func (m *mockAllocationRepo) ListOpenAllocations(ctx context.Context, filter types.Filter) ([]*entities.Allocation, uint64, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*entities.Allocation)
	return list, args.Get(1).(uint64), args.Error(2)
}

func (m *mockAllocationRepo) ListByEquipment(ctx context.Context, equipmentID uint64) ([]*entities.Allocation, error) {
	args := m.Called(ctx, equipmentID)
	list, _ := args.Get(0).([]*entities.Allocation)
	return list, args.Error(1)
}

func (m *mockAllocationRepo) CreateAllocation(ctx context.Context, tx pgx.Tx, a *entities.Allocation) (uint64, error) {
	args := m.Called(ctx, tx, a)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockAllocationRepo) UpdateAllocation(ctx context.Context, tx pgx.Tx, a *entities.Allocation) error {
	return m.Called(ctx, tx, a).Error(0)
}

func (m *mockAllocationRepo) MarkReturned(ctx context.Context, tx pgx.Tx, id uint64) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *mockAllocationRepo) DeleteAllocation(ctx context.Context, tx pgx.Tx, id uint64) error {
	return m.Called(ctx, tx, id).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entities.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*entities.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetUsers(ctx context.Context, filter types.Filter) ([]*entities.User, uint64, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*entities.User)
	return list, args.Get(1).(uint64), args.Error(2)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, tx pgx.Tx, user *entities.User) (uint64, error) {
	args := m.Called(ctx, tx, user)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, tx pgx.Tx, user *entities.User) error {
	return m.Called(ctx, tx, user).Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uint64, hashedPassword string) error {
	return m.Called(ctx, id, hashedPassword).Error(0)
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

// memoryCache is an in-process CacheRepositoryInterface; TTLs are ignored.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	default:
		c.data[key] = "?"
	}
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *memoryCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

// countingCounter records invalidations instead of touching a cache.
type countingCounter struct {
	counts      map[uint64]uint64
	invalidated int
}

func (c *countingCounter) Remaining(ctx context.Context) (map[uint64]uint64, error) {
	if c.counts == nil {
		return map[uint64]uint64{}, nil
	}
	return c.counts, nil
}

func (c *countingCounter) Invalidate(ctx context.Context) { c.invalidated++ }
