package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-store/internal/authz"
	"equipment-store/internal/controllers"
	"equipment-store/pkg/middleware"
)

func runEquipmentRouter(store *echo.Group, ctrl *controllers.EquipmentController, authMW *middleware.AuthMiddleware) {
	manage := authMW.Require(authz.StoreManage)

	store.GET("/get_ids/", ctrl.GetIDs)
	store.GET("/get_label/", ctrl.GetLabel)

	store.GET("/equipments/:type/:filter", ctrl.GetEquipments)
	store.GET("/equipments/:type/:filter/export", ctrl.ExportEquipments)
	store.GET("/search-equipment/:type", ctrl.SearchEquipments)
	store.GET("/detail-equipment/:type/:id", ctrl.FindEquipment)

	store.POST("/add-equipment", ctrl.CreateEquipment, manage)
	store.POST("/import-equipment", ctrl.ImportEquipments, manage)
	store.PUT("/update-equipment/:type/:id", ctrl.UpdateEquipment, manage)
	store.DELETE("/delete-equipment/:type/:id", ctrl.DeleteEquipment, manage)
}
