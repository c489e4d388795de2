package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/services"
	"equipment-store/pkg/customvalidator"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/utils"
)

type stubAllocationService struct {
	services.AllocationServiceInterface
	err error
}

func (s *stubAllocationService) CreateAllocation(ctx context.Context, payload dto.CreateAllocationDTO) (*dto.AllocationDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AllocationDTO{
		ID:        1,
		User:      dto.ShortUserDTO{ID: payload.UserID, Username: "alice"},
		Equipment: dto.ShortEquipmentDTO{ID: payload.EquipmentID, Label: "Lap-000001"},
	}, nil
}

func newAllocationServer(t *testing.T, err error) *echo.Echo {
	t.Helper()
	v, verr := customvalidator.New()
	require.NoError(t, verr)

	e := echo.New()
	e.Validator = utils.NewValidator(v)
	ctrl := NewAllocationController(&stubAllocationService{err: err}, 25, zap.NewNop())
	e.POST("/store/create-allocation", ctrl.CreateAllocation)
	return e
}

func TestCreateAllocation_Created(t *testing.T) {
	e := newAllocationServer(t, nil)

	rec := serve(e, http.MethodPost, "/store/create-allocation", `{"user_id":3,"equipment_id":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestCreateAllocation_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unavailable", apperrors.ErrEquipmentUnavailable, http.StatusConflict},
		{"type mismatch", apperrors.ErrTypeMismatch, http.StatusBadRequest},
		{"unknown equipment", apperrors.ErrNotFound, http.StatusNotFound},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newAllocationServer(t, tt.err)
			rec := serve(e, http.MethodPost, "/store/create-allocation", `{"user_id":3,"equipment_id":10}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status":false`)
		})
	}
}

func TestCreateAllocation_ValidationFails(t *testing.T) {
	e := newAllocationServer(t, nil)

	rec := serve(e, http.MethodPost, "/store/create-allocation", `{"user_id":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
