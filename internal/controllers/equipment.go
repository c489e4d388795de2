package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/services"
	"equipment-store/pkg/constants"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EquipmentController struct {
	equipmentService   services.EquipmentServiceInterface
	spreadsheetService services.EquipmentSpreadsheetServiceInterface
	pageSize           int
	logger             *zap.Logger
}

func NewEquipmentController(
	equipmentService services.EquipmentServiceInterface,
	spreadsheetService services.EquipmentSpreadsheetServiceInterface,
	pageSize int,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		equipmentService:   equipmentService,
		spreadsheetService: spreadsheetService,
		pageSize:           pageSize,
		logger:             logger,
	}
}

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	typeRef := ctx.Param("type")
	listing := constants.ParseEquipmentFilter(ctx.Param("filter"))
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), c.pageSize)

	res, total, err := c.equipmentService.GetEquipments(ctx.Request().Context(), typeRef, listing, filter)
	if err != nil {
		return utils.FailResponse(ctx, "Could not list equipment", err, c.logger)
	}
	return utils.SuccessListResponse(ctx, res, filter, total, "Equipment")
}

func (c *EquipmentController) SearchEquipments(ctx echo.Context) error {
	typeRef := ctx.Param("type")
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), c.pageSize)

	res, total, err := c.equipmentService.SearchEquipments(ctx.Request().Context(), typeRef, filter)
	if err != nil {
		return utils.FailResponse(ctx, "Could not search equipment", err, c.logger)
	}
	return utils.SuccessListResponse(ctx, res, filter, total, "Equipment")
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.equipmentService.FindEquipment(ctx.Request().Context(), ctx.Param("type"), id)
	if err != nil {
		return utils.FailResponse(ctx, "Equipment not found", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment", http.StatusOK)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	var payload dto.CreateEquipmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.FailResponse(ctx, "Invalid equipment payload", badRequest(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.CreateEquipment(ctx.Request().Context(), payload)
	if err != nil {
		return utils.FailResponse(ctx, "Could not create the equipment", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment created", http.StatusCreated)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateEquipmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.FailResponse(ctx, "Invalid equipment payload", badRequest(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.UpdateEquipment(ctx.Request().Context(), ctx.Param("type"), id, payload)
	if err != nil {
		return utils.FailResponse(ctx, "Could not update the equipment", err, c.logger)
	}

	message := "Equipment updated"
	if res.ForceReturned != nil {
		message = "Equipment updated, its allocation was returned"
	}
	return utils.SuccessResponse(ctx, res, message, http.StatusOK)
}

func (c *EquipmentController) DeleteEquipment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.equipmentService.DeleteEquipment(ctx.Request().Context(), ctx.Param("type"), id); err != nil {
		return utils.FailResponse(ctx, "Could not delete the equipment", err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Equipment deleted", http.StatusOK)
}

func requireTypeQuery(ctx echo.Context) (string, error) {
	typeRef := strings.TrimSpace(ctx.QueryParam("equipment_type"))
	if typeRef == "" {
		return "", apperrors.NewBadRequestError("The equipment_type parameter is required")
	}
	return typeRef, nil
}

// GetIDs answers with a bare JSON array of [id, label] pairs.
func (c *EquipmentController) GetIDs(ctx echo.Context) error {
	typeRef, err := requireTypeQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	pairs, err := c.equipmentService.GetUnassignedIDs(ctx.Request().Context(), typeRef)
	if err != nil {
		return utils.FailResponse(ctx, "Could not list unassigned equipment", err, c.logger)
	}
	return ctx.JSON(http.StatusOK, pairs)
}

// GetLabel answers with the bare JSON string of the next label.
func (c *EquipmentController) GetLabel(ctx echo.Context) error {
	typeRef, err := requireTypeQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	label, err := c.equipmentService.NextLabel(ctx.Request().Context(), typeRef)
	if err != nil {
		return utils.FailResponse(ctx, "Could not compute the next label", err, c.logger)
	}
	return ctx.JSON(http.StatusOK, label)
}

func (c *EquipmentController) ExportEquipments(ctx echo.Context) error {
	typeRef := ctx.Param("type")
	listing := constants.ParseEquipmentFilter(ctx.Param("filter"))

	data, err := c.spreadsheetService.ExportEquipments(ctx.Request().Context(), typeRef, listing, strings.TrimSpace(ctx.QueryParam("search")))
	if err != nil {
		return utils.FailResponse(ctx, "Could not export equipment", err, c.logger)
	}

	filename := fmt.Sprintf("equipment-%s-%s-%s.xlsx", typeRef, listing, time.Now().Format("20060102"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxContentType, data)
}

func (c *EquipmentController) ImportEquipments(ctx echo.Context) error {
	typeRef := strings.TrimSpace(ctx.FormValue("equipment_type"))
	if typeRef == "" {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("The equipment_type field is required"), c.logger)
	}
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("An xlsx file is required in the file field"), c.logger)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return utils.FailResponse(ctx, "Could not read the upload", err, c.logger)
	}
	defer file.Close()

	res, err := c.spreadsheetService.ImportEquipments(ctx.Request().Context(), typeRef, file)
	if err != nil {
		return utils.FailResponse(ctx, "Could not import equipment", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, fmt.Sprintf("%d created, %d skipped", len(res.Created), len(res.Skipped)), http.StatusOK)
}
