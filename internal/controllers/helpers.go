package controllers

import (
	"fmt"

	apperrors "equipment-store/pkg/errors"
)

// badRequest marks a bind error as a client error.
func badRequest(err error) error {
	return fmt.Errorf("%v: %w", err, apperrors.ErrBadRequest)
}
