package handler

import (
	"errors"

	"warehub-core-api/internal/repository"
	"warehub-core-api/internal/service"
	"warehub-core-api/pkg/apierror"
)

// mapError converts domain errors to API errors. Anything unrecognized
// falls through as a 500 in the response layer.
func mapError(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidProductSpec),
		errors.Is(err, repository.ErrInvalidEventType),
		errors.Is(err, repository.ErrInvalidQuantity):
		return apierror.BadRequest(err.Error())

	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrBoxNotFound),
		errors.Is(err, repository.ErrPalletNotFound),
		errors.Is(err, repository.ErrSlotNotFound):
		return apierror.NotFound(err.Error())

	case errors.Is(err, repository.ErrDuplicateName),
		errors.Is(err, repository.ErrProductMismatch):
		return apierror.Conflict(err.Error())

	case errors.Is(err, repository.ErrCapacityExceeded),
		errors.Is(err, service.ErrInsufficientSupply):
		return apierror.UnprocessableEntity(err.Error())

	default:
		return err
	}
}
