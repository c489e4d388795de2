package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-store/internal/authz"
	"equipment-store/internal/controllers"
	"equipment-store/pkg/middleware"
)

func runAllocationRouter(store *echo.Group, ctrl *controllers.AllocationController, authMW *middleware.AuthMiddleware) {
	manage := authMW.Require(authz.StoreManage)

	store.GET("/allocations", ctrl.GetAllocations)
	store.GET("/search-allocation", ctrl.SearchAllocations)
	store.POST("/create-allocation", ctrl.CreateAllocation, manage)
	store.PUT("/allocations/update-allocation/:id", ctrl.UpdateAllocation, manage)
	store.DELETE("/allocations/delete-allocation/:id", ctrl.DeleteAllocation, manage)
}
