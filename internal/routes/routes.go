package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"equipment-store/internal/authz"
	"equipment-store/internal/controllers"
	"equipment-store/internal/repositories"
	"equipment-store/internal/services"
	"equipment-store/pkg/config"
	"equipment-store/pkg/middleware"
	"equipment-store/pkg/service"
)

type Loggers struct {
	Main  *zap.Logger
	Auth  *zap.Logger
	User  *zap.Logger
	Store *zap.Logger
}

// NewLoggers names a child logger per area of the API.
func NewLoggers(base *zap.Logger) *Loggers {
	return &Loggers{
		Main:  base.Named("main"),
		Auth:  base.Named("auth"),
		User:  base.Named("user"),
		Store: base.Named("store"),
	}
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	loggers *Loggers,
	validate *validator.Validate,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: registering routes")

	// --- 0. shared ---
	authMW := middleware.NewAuthMiddleware(jwtSvc, authz.NewGatekeeper(), loggers.Auth)
	txManager := repositories.NewTxManager(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 1. repositories ---
	userRepo := repositories.NewUserRepository(dbConn, loggers.User)
	equipmentTypeRepo := repositories.NewEquipmentTypeRepository(dbConn)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, loggers.Store)
	allocationRepo := repositories.NewAllocationRepository(dbConn, loggers.Store)

	// --- 2. services ---
	counter := services.NewRemainingCounter(cacheRepo, equipmentRepo, cfg.Store.CounterCacheTTL, loggers.Store)
	authService := services.NewAuthService(userRepo, cacheRepo, loggers.Auth, &cfg.Auth)
	userService := services.NewUserService(txManager, userRepo, counter, loggers.User)
	equipmentTypeService := services.NewEquipmentTypeService(txManager, equipmentTypeRepo, counter, loggers.Store)
	equipmentService := services.NewEquipmentService(txManager, equipmentRepo, equipmentTypeRepo, allocationRepo, counter, loggers.Store)
	spreadsheetService := services.NewEquipmentSpreadsheetService(equipmentService, equipmentTypeRepo, validate, loggers.Store)
	allocationService := services.NewAllocationService(txManager, allocationRepo, equipmentRepo, counter, loggers.Store)

	// --- 3. controllers ---
	pageSize := cfg.Store.PageSize
	authController := controllers.NewAuthController(authService, jwtSvc, cfg.Auth.CookieSecure, loggers.Auth)
	userController := controllers.NewUserController(userService, pageSize, loggers.User)
	equipmentTypeController := controllers.NewEquipmentTypeController(equipmentTypeService, pageSize, loggers.Store)
	equipmentController := controllers.NewEquipmentController(equipmentService, spreadsheetService, pageSize, loggers.Store)
	allocationController := controllers.NewAllocationController(allocationService, pageSize, loggers.Store)

	// --- 4. routers ---
	runOpsRouter(e, dbConn, gatherer, loggers.Main)

	accounts := e.Group("/accounts")
	runAuthRouter(accounts, authController, authMW)
	runUserRouter(accounts.Group("", authMW.Auth), userController, authMW)

	store := e.Group("/store", authMW.Auth, authMW.Require(authz.StoreView))
	runEquipmentTypeRouter(store, equipmentTypeController, authMW)
	runEquipmentRouter(store, equipmentController, authMW)
	runAllocationRouter(store, allocationController, authMW)

	loggers.Main.Info("InitRouter: routes registered")
}
