package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/services"
	"equipment-store/pkg/utils"
)

type AllocationController struct {
	allocationService services.AllocationServiceInterface
	pageSize          int
	logger            *zap.Logger
}

func NewAllocationController(service services.AllocationServiceInterface, pageSize int, logger *zap.Logger) *AllocationController {
	return &AllocationController{allocationService: service, pageSize: pageSize, logger: logger}
}

func (c *AllocationController) GetAllocations(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), c.pageSize)
	res, total, err := c.allocationService.GetAllocations(ctx.Request().Context(), filter)
	if err != nil {
		return utils.FailResponse(ctx, "Could not list allocations", err, c.logger)
	}
	return utils.SuccessListResponse(ctx, res, filter, total, "Allocations")
}

func (c *AllocationController) SearchAllocations(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), c.pageSize)
	res, total, err := c.allocationService.SearchAllocations(ctx.Request().Context(), filter)
	if err != nil {
		return utils.FailResponse(ctx, "Could not search allocations", err, c.logger)
	}
	return utils.SuccessListResponse(ctx, res, filter, total, "Allocations")
}

func (c *AllocationController) CreateAllocation(ctx echo.Context) error {
	var payload dto.CreateAllocationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.FailResponse(ctx, "Invalid allocation payload", badRequest(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.allocationService.CreateAllocation(ctx.Request().Context(), payload)
	if err != nil {
		return utils.FailResponse(ctx, "Could not allocate the equipment", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Allocation created", http.StatusCreated)
}

func (c *AllocationController) UpdateAllocation(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateAllocationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.FailResponse(ctx, "Invalid allocation payload", badRequest(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.allocationService.UpdateAllocation(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.FailResponse(ctx, "Could not update the allocation", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Allocation updated", http.StatusOK)
}

func (c *AllocationController) DeleteAllocation(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.allocationService.DeleteAllocation(ctx.Request().Context(), id); err != nil {
		return utils.FailResponse(ctx, "Could not delete the allocation", err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Allocation deleted", http.StatusOK)
}
