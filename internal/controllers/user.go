package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/services"
	"equipment-store/pkg/utils"
)

type UserController struct {
	userService services.UserServiceInterface
	pageSize    int
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, pageSize int, logger *zap.Logger) *UserController {
	return &UserController{
		userService: userService,
		pageSize:    pageSize,
		logger:      logger,
	}
}

func (c *UserController) GetUsers(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), c.pageSize)
	res, total, err := c.userService.GetUsers(ctx.Request().Context(), filter)
	if err != nil {
		return utils.FailResponse(ctx, "Could not list users", err, c.logger)
	}
	return utils.SuccessListResponse(ctx, res, filter, total, "Users")
}

func (c *UserController) SearchUsers(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), c.pageSize)
	res, total, err := c.userService.SearchUsers(ctx.Request().Context(), filter)
	if err != nil {
		return utils.FailResponse(ctx, "Could not search users", err, c.logger)
	}
	return utils.SuccessListResponse(ctx, res, filter, total, "Users")
}

func (c *UserController) FindUser(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.userService.FindUser(ctx.Request().Context(), id)
	if err != nil {
		return utils.FailResponse(ctx, "User not found", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "User", http.StatusOK)
}

func (c *UserController) CreateUser(ctx echo.Context) error {
	var payload dto.CreateUserDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.FailResponse(ctx, "Invalid user payload", badRequest(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.userService.CreateUser(ctx.Request().Context(), payload)
	if err != nil {
		return utils.FailResponse(ctx, "Could not create the user", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "User created", http.StatusCreated)
}

func (c *UserController) UpdateUser(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateUserDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.FailResponse(ctx, "Invalid user payload", badRequest(err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.userService.UpdateUser(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.FailResponse(ctx, "Could not update the user", err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "User updated", http.StatusOK)
}

func (c *UserController) DeleteUser(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.userService.DeleteUser(ctx.Request().Context(), id); err != nil {
		return utils.FailResponse(ctx, "Could not delete the user", err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "User deleted", http.StatusOK)
}
