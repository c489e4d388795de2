package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-store/internal/authz"
	"equipment-store/pkg/service"
	"equipment-store/pkg/utils"
)

func newTestServer(t *testing.T) (*echo.Echo, service.JWTService) {
	t.Helper()
	logger := zap.NewNop()
	jwtSvc := service.NewJWTService("test-secret", time.Hour, 24*time.Hour, logger)
	mw := NewAuthMiddleware(jwtSvc, authz.NewGatekeeper(), logger)

	e := echo.New()
	whoami := func(c echo.Context) error {
		id, err := utils.GetUserIDFromCtx(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]uint64{"id": id})
	}
	e.GET("/me", whoami, mw.Auth)
	e.POST("/admin", whoami, mw.Auth, mw.RequireSuperuser)
	e.PUT("/users/:id", whoami, mw.Auth, mw.RequireSelfOr(authz.UsersUpdate, "id"))
	return e, jwtSvc
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth_BearerAndCookie(t *testing.T) {
	e, jwtSvc := newTestServer(t)
	access, refresh, err := jwtSvc.GenerateTokens(7, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	rec := do(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: access})
	assert.Equal(t, http.StatusOK, do(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, do(e, req).Code)
}

func TestAuth_Rejects(t *testing.T) {
	e, _ := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, do(e, httptest.NewRequest(http.MethodGet, "/me", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, do(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, do(e, req).Code)
}

func TestRequireSuperuser(t *testing.T) {
	e, jwtSvc := newTestServer(t)
	userToken, _, err := jwtSvc.GenerateTokens(7, false)
	require.NoError(t, err)
	adminToken, _, err := jwtSvc.GenerateTokens(1, true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, do(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, do(e, req).Code)
}

func TestRequireSelfOr(t *testing.T) {
	e, jwtSvc := newTestServer(t)
	userToken, _, err := jwtSvc.GenerateTokens(7, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/users/7", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+userToken)
	assert.Equal(t, http.StatusOK, do(e, req).Code)

	req = httptest.NewRequest(http.MethodPut, "/users/8", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, do(e, req).Code)

	req = httptest.NewRequest(http.MethodPut, "/users/abc", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+userToken)
	assert.Equal(t, http.StatusBadRequest, do(e, req).Code)
}

func TestInjectLogger_SetsRequestID(t *testing.T) {
	e := echo.New()
	e.Use(InjectLogger(zap.NewNop()))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, utils.GetRequestIDFromCtx(c.Request().Context()))
	})

	rec := do(e, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(echo.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec = do(e, req)
	assert.Equal(t, "abc-123", rec.Body.String())
}
