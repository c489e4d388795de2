package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-store/internal/authz"
	"equipment-store/internal/controllers"
	"equipment-store/pkg/middleware"
)

func runUserRouter(secure *echo.Group, ctrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	secure.GET("/users", ctrl.GetUsers, authMW.Require(authz.UsersView))
	secure.GET("/search-user", ctrl.SearchUsers, authMW.Require(authz.UsersView))
	secure.POST("/add-user", ctrl.CreateUser, authMW.RequireSuperuser)
	secure.GET("/users/:id", ctrl.FindUser, authMW.Require(authz.UsersView))
	secure.PUT("/users/:id", ctrl.UpdateUser, authMW.RequireSelfOr(authz.UsersUpdate, "id"))
	secure.DELETE("/users/:id", ctrl.DeleteUser, authMW.RequireSelfOr(authz.UsersDelete, "id"))
}
