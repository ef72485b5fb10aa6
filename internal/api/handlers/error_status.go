package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"glucolog/domain"
)

// errorStatus maps domain errors to HTTP status codes. Anything unknown is a 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidMealType),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrMissingDescription),
		errors.Is(err, domain.ErrNegativeCarbs),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrMissingImage),
		errors.Is(err, domain.ErrMissingAnalyzeIn),
		errors.Is(err, domain.ErrInvalidEvent),
		errors.Is(err, domain.ErrUnknownEvent),
		errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrFileRequired),
		errors.Is(err, domain.ErrFileTypeNotAllowed),
		errors.Is(err, domain.ErrParseUUID):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenNotFound):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrMealNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUploadFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, domain.ErrStorageNotConfigured):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}
