package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-store/internal/authz"
	"equipment-store/internal/controllers"
	"equipment-store/pkg/middleware"
)

func runEquipmentTypeRouter(store *echo.Group, ctrl *controllers.EquipmentTypeController, authMW *middleware.AuthMiddleware) {
	manage := authMW.Require(authz.StoreManage)

	store.GET("/", ctrl.GetEquipmentTypes)
	store.GET("/search-equipment-type", ctrl.SearchEquipmentTypes)
	store.GET("/equipment-type/:id", ctrl.FindEquipmentType)
	store.POST("/add-equipment-type", ctrl.CreateEquipmentType, manage)
	store.PUT("/update-equipment-type/:id", ctrl.UpdateEquipmentType, manage)
	store.DELETE("/delete-equipment-type/:id", ctrl.DeleteEquipmentType, manage)
}
