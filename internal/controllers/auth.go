package controllers

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-store/internal/authz"
	"equipment-store/internal/dto"
	"equipment-store/internal/entities"
	"equipment-store/internal/services"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/middleware"
	"equipment-store/pkg/service"
	"equipment-store/pkg/utils"
)

const refreshCookie = "refreshToken"

type AuthController struct {
	authService  services.AuthServiceInterface
	jwtSvc       service.JWTService
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthController(
	authService services.AuthServiceInterface,
	jwtSvc service.JWTService,
	cookieSecure bool,
	logger *zap.Logger,
) *AuthController {
	return &AuthController{
		authService:  authService,
		jwtSvc:       jwtSvc,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Warn("Login: bind failed", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Invalid login payload"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	user, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		return utils.FailResponse(c, "Login failed", err, ctrl.logger)
	}

	return ctrl.generateTokensAndRespond(c, user, "Logged in")
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	for _, name := range []string{middleware.SessionCookie, refreshCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   ctrl.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return utils.SuccessResponse(c, nil, "Logged out", http.StatusOK)
}

func (ctrl *AuthController) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		return utils.FailResponse(c, "Refresh token is missing", apperrors.ErrUnauthorized, ctrl.logger)
	}

	claims, err := ctrl.jwtSvc.ValidateToken(cookie.Value)
	if err != nil {
		return utils.FailResponse(c, "Invalid or expired token", err, ctrl.logger)
	}
	if !claims.IsRefreshToken {
		return utils.FailResponse(c, "A refresh token is required", apperrors.ErrTokenIsNotRefresh, ctrl.logger)
	}

	// Reload the account so revoked or demoted users do not keep old rights.
	user, err := ctrl.authService.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return utils.FailResponse(c, "Invalid or expired token", err, ctrl.logger)
	}
	return ctrl.generateTokensAndRespond(c, user, "Tokens refreshed")
}

func (ctrl *AuthController) Me(c echo.Context) error {
	principal, err := utils.GetPrincipalFromCtx(c.Request().Context())
	if err != nil {
		ctrl.logger.Error("Me: principal missing from protected route")
		return ctrl.errorResponse(c, apperrors.NewHttpError(http.StatusUnauthorized, "Authentication required", err, nil))
	}
	user, err := ctrl.authService.GetUserByID(c.Request().Context(), principal.UserID)
	if err != nil {
		return utils.FailResponse(c, "Could not load the profile", err, ctrl.logger)
	}

	perms := authz.PermissionsFor(user.IsSuperuser)
	names := make([]string, 0, len(perms))
	for p := range perms {
		names = append(names, p)
	}
	sort.Strings(names)

	response := dto.UserProfileDTO{
		UserPublicDTO: userPublic(user),
		Email:         user.Email,
		Permissions:   names,
	}
	return utils.SuccessResponse(c, response, "Profile loaded", http.StatusOK)
}

func userPublic(u *entities.User) dto.UserPublicDTO {
	return dto.UserPublicDTO{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName(),
		IsSuperuser: u.IsSuperuser,
	}
}

func (ctrl *AuthController) generateTokensAndRespond(c echo.Context, user *entities.User, message string) error {
	accessToken, refreshToken, err := ctrl.jwtSvc.GenerateTokens(user.ID, user.IsSuperuser)
	if err != nil {
		ctrl.logger.Error("could not generate tokens", zap.Uint64("user_id", user.ID), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	now := time.Now()
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    accessToken,
		Path:     "/",
		Expires:  now.Add(ctrl.jwtSvc.GetAccessTokenTTL()),
		HttpOnly: true,
		Secure:   ctrl.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    refreshToken,
		Path:     "/",
		Expires:  now.Add(ctrl.jwtSvc.GetRefreshTokenTTL()),
		HttpOnly: true,
		Secure:   ctrl.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response := dto.AuthResponseDTO{
		AccessToken: accessToken,
		User:        userPublic(user),
	}
	return utils.SuccessResponse(c, response, message, http.StatusOK)
}
