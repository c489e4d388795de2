package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-store/internal/authz"
	"equipment-store/pkg/contextkeys"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/service"
	"equipment-store/pkg/utils"
)

// SessionCookie carries the access token for browser clients.
const SessionCookie = "session"

type AuthMiddleware struct {
	jwtService service.JWTService
	gatekeeper *authz.Gatekeeper
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, gatekeeper *authz.Gatekeeper, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		gatekeeper: gatekeeper,
		logger:     logger,
	}
}

// extractToken prefers the Authorization header and falls back to the
// session cookie.
func extractToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", apperrors.ErrInvalidAuthHeader
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", apperrors.ErrEmptyAuthHeader
}

// Auth validates the access token and stores the caller in the request
// context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := extractToken(c)
		if err != nil {
			m.logger.Debug("AuthMiddleware: no usable token", zap.Error(err))
			return utils.FailResponse(c, "Authentication required", err, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("AuthMiddleware: token validation failed", zap.Error(err))
			return utils.FailResponse(c, "Invalid or expired token", err, m.logger)
		}
		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: refresh token used for access", zap.Uint64("user_id", claims.UserID))
			return utils.FailResponse(c, "Invalid or expired token", apperrors.ErrTokenIsNotAccess, m.logger)
		}

		principal := authz.NewPrincipal(claims.UserID, claims.IsSuperuser)
		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.PrincipalKey, principal)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// Require lets the request through when the caller holds permission.
func (m *AuthMiddleware) Require(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := utils.GetPrincipalFromCtx(c.Request().Context())
			if err != nil {
				return utils.FailResponse(c, "Authentication required", err, m.logger)
			}
			if !m.gatekeeper.Can(p, permission, nil) {
				m.logger.Warn("permission denied",
					zap.Uint64("user_id", p.UserID),
					zap.String("permission", permission),
					zap.String("uri", c.Request().RequestURI),
				)
				return utils.FailResponse(c, "You do not have permission to perform this action", apperrors.ErrForbidden, m.logger)
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) RequireSuperuser(next echo.HandlerFunc) echo.HandlerFunc {
	return m.Require(authz.Superuser)(next)
}

// RequireSelfOr allows permission to a superuser or to the user whose id is
// the path parameter param.
func (m *AuthMiddleware) RequireSelfOr(permission, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := utils.GetPrincipalFromCtx(c.Request().Context())
			if err != nil {
				return utils.FailResponse(c, "Authentication required", err, m.logger)
			}
			targetID, err := utils.ParseIDParam(c, param)
			if err != nil {
				return utils.ErrorResponse(c, err, m.logger)
			}
			if !m.gatekeeper.Can(p, permission, targetID) {
				m.logger.Warn("permission denied",
					zap.Uint64("user_id", p.UserID),
					zap.Uint64("target_id", targetID),
					zap.String("permission", permission),
				)
				return utils.FailResponse(c, "You do not have permission to perform this action", apperrors.ErrForbidden, m.logger)
			}
			return next(c)
		}
	}
}
