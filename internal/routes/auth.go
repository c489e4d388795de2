package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-store/internal/controllers"
	"equipment-store/pkg/middleware"
)

func runAuthRouter(accounts *echo.Group, ctrl *controllers.AuthController, authMW *middleware.AuthMiddleware) {
	accounts.POST("/login", ctrl.Login)
	accounts.POST("/refresh", ctrl.RefreshToken)
	accounts.POST("/logout", ctrl.Logout)
	accounts.GET("/me", ctrl.Me, authMW.Auth)
}
