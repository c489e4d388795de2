package utils

import (
	"context"

	"equipment-store/internal/authz"
	"equipment-store/pkg/contextkeys"
	apperrors "equipment-store/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetPrincipalFromCtx(ctx context.Context) (*authz.Principal, error) {
	p, ok := ctx.Value(contextkeys.PrincipalKey).(*authz.Principal)
	if !ok || p == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return p, nil
}

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.RequestIDKey).(string)
	return id
}
