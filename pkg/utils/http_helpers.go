package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/types"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

// ListBody is the body of a paginated list response.
type ListBody struct {
	List       interface{}      `json:"list"`
	Pagination types.Pagination `json:"pagination"`
}

const MaxLimit = 500

// ParseFilterFromQuery reads search, sort[field], filter[field], limit, page,
// offset and withPagination. defaultLimit applies when limit is absent.
func ParseFilterFromQuery(values url.Values, defaultLimit int) types.Filter {
	filterReq := types.Filter{
		Sort:           make(map[string]string),
		Filter:         make(map[string]interface{}),
		Limit:          defaultLimit,
		Page:           1,
		WithPagination: true,
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filterReq.Limit = min(l, MaxLimit)
		}
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}

	if offsetStr := values.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filterReq.Offset = o
		}
	} else {
		filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit
	}

	if values.Get("withPagination") == "false" {
		filterReq.WithPagination = false
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		if key == "search" {
			filterReq.Search = strings.TrimSpace(vals[0])
			continue
		}

		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			field := key[5 : len(key)-1]
			direction := strings.ToLower(vals[0])
			if direction == "asc" || direction == "desc" {
				filterReq.Sort[field] = direction
			}
			continue
		}

		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			field := key[7 : len(key)-1]
			if existing, ok := filterReq.Filter[field]; ok {
				filterReq.Filter[field] = fmt.Sprintf("%v,%s", existing, vals[0])
			} else {
				filterReq.Filter[field] = vals[0]
			}
		}
	}

	return filterReq
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Body: body, Message: message})
}

// SuccessListResponse wraps list with pagination metadata unless the caller
// asked for withPagination=false.
func SuccessListResponse(ctx echo.Context, list interface{}, filter types.Filter, total uint64, message string) error {
	if !filter.WithPagination {
		return SuccessResponse(ctx, list, message, http.StatusOK)
	}
	body := ListBody{
		List:       list,
		Pagination: types.NewPagination(total, filter.Page, filter.Limit),
	}
	return SuccessResponse(ctx, body, message, http.StatusOK)
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			fields := []zap.Field{
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(httpErr.Err),
			}
			if httpErr.Code >= http.StatusInternalServerError {
				logger.Error("HTTP Error", fields...)
			} else {
				logger.Warn("HTTP Error", fields...)
			}
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fieldErrors := make(map[string]string, len(validationErrors))
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fieldErrors[e.Field()] = e.Tag()
			msgs = append(msgs, fmt.Sprintf("field '%s' failed on '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": "Validation failed: " + strings.Join(msgs, "; "),
			"body":    fieldErrors,
		})
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Internal server error",
	})
}

// FailResponse maps err to its HTTP status and writes the error envelope.
// Client errors carry the error text in the body; server errors do not.
func FailResponse(c echo.Context, message string, err error, logger *zap.Logger) error {
	code := apperrors.StatusOf(err)
	var details interface{}
	if code < http.StatusInternalServerError {
		details = map[string]string{"error": err.Error()}
	}
	return ErrorResponse(c, apperrors.NewHttpError(code, message, err, details), logger)
}

// ParseIDParam reads a positive numeric path parameter.
func ParseIDParam(c echo.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			fmt.Sprintf("Invalid %s", name),
			apperrors.ErrBadRequest,
			map[string]interface{}{"param": raw},
		)
	}
	return id, nil
}

// RequireSearch returns the trimmed search term or a 400 error when it is
// missing.
func RequireSearch(filter types.Filter) (string, error) {
	if filter.Search == "" {
		return "", apperrors.NewBadRequestError("The search parameter is required")
	}
	return filter.Search, nil
}
