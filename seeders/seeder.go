package seeders

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-store/internal/repositories"
	"equipment-store/internal/services"
)

// Seeder builds the store services without a cache, so every write goes
// straight to Postgres.
type Seeder struct {
	userRepo          repositories.UserRepositoryInterface
	userService       services.UserServiceInterface
	equipmentTypes    services.EquipmentTypeServiceInterface
	equipmentService  services.EquipmentServiceInterface
	allocationService services.AllocationServiceInterface
	logger            *zap.Logger
}

func New(db *pgxpool.Pool, logger *zap.Logger) *Seeder {
	txManager := repositories.NewTxManager(db)
	userRepo := repositories.NewUserRepository(db, logger)
	equipmentTypeRepo := repositories.NewEquipmentTypeRepository(db)
	equipmentRepo := repositories.NewEquipmentRepository(db, logger)
	allocationRepo := repositories.NewAllocationRepository(db, logger)
	counter := services.NewRemainingCounter(nil, equipmentRepo, 0, logger)

	return &Seeder{
		userRepo:          userRepo,
		userService:       services.NewUserService(txManager, userRepo, counter, logger),
		equipmentTypes:    services.NewEquipmentTypeService(txManager, equipmentTypeRepo, counter, logger),
		equipmentService:  services.NewEquipmentService(txManager, equipmentRepo, equipmentTypeRepo, allocationRepo, counter, logger),
		allocationService: services.NewAllocationService(txManager, allocationRepo, equipmentRepo, counter, logger),
		logger:            logger,
	}
}
