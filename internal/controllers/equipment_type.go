package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/services"
	"equipment-store/pkg/utils"
)

type EquipmentTypeController struct {
	equipmentTypeService services.EquipmentTypeServiceInterface
	pageSize             int
	logger               *zap.Logger
}

func NewEquipmentTypeController(service services.EquipmentTypeServiceInterface, pageSize int, logger *zap.Logger) *EquipmentTypeController {
	return &EquipmentTypeController{equipmentTypeService: service, pageSize: pageSize, logger: logger}
}

func (c *EquipmentTypeController) GetEquipmentTypes(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), c.pageSize)
	res, total, err := c.equipmentTypeService.GetEquipmentTypes(ctx.Request().Context(), filter)
	if err != nil {
		return utils.FailResponse(ctx, "Could not list equipment types", err, c.logger)
	}
	return utils.SuccessListResponse(ctx, res, filter, total, "Equipment types")
}

func (c *EquipmentTypeController) SearchEquipmentTypes(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), c.pageSize)
	res, total, err := c.equipmentTypeService.SearchEquipmentTypes(ctx.Request().Context(), filter)
	if err != nil {
		return utils.FailResponse(ctx, "Could not search equipment types", err, c.logger)
	}
	return utils.SuccessListResponse(ctx, res, filter, total, "Equipment types")
}

func (c *EquipmentTypeController) FindEquipmentType(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.equipmentTypeService.FindEquipmentType(ctx.Request().Context(), id)
	if err != nil {
		return utils.FailResponse(ctx, "Equipment type not found", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment type", http.StatusOK)
}

func (c *EquipmentTypeController) CreateEquipmentType(ctx echo.Context) error {
	var payload dto.CreateEquipmentTypeDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.FailResponse(ctx, "Invalid equipment type payload", badRequest(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentTypeService.CreateEquipmentType(ctx.Request().Context(), payload)
	if err != nil {
		return utils.FailResponse(ctx, "Could not create the equipment type", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment type created", http.StatusCreated)
}

func (c *EquipmentTypeController) UpdateEquipmentType(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateEquipmentTypeDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.FailResponse(ctx, "Invalid equipment type payload", badRequest(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentTypeService.UpdateEquipmentType(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.FailResponse(ctx, "Could not update the equipment type", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment type updated", http.StatusOK)
}

func (c *EquipmentTypeController) DeleteEquipmentType(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.equipmentTypeService.DeleteEquipmentType(ctx.Request().Context(), id); err != nil {
		return utils.FailResponse(ctx, "Could not delete the equipment type", err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Equipment type deleted", http.StatusOK)
}
