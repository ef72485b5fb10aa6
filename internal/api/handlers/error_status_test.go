package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"glucolog/domain"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrMissingDescription), fiber.StatusBadRequest},
		{domain.ErrInvalidDate, fiber.StatusBadRequest},
		{fmt.Errorf("%w: confirmed in photo-capture", domain.ErrInvalidEvent), fiber.StatusBadRequest},
		{domain.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{domain.ErrTokenExpired, fiber.StatusUnauthorized},
		{domain.ErrMealNotFound, fiber.StatusNotFound},
		{domain.ErrSessionNotFound, fiber.StatusNotFound},
		{domain.ErrEmailAlreadyExists, fiber.StatusConflict},
		{fmt.Errorf("%w: access denied", domain.ErrUploadFailed), fiber.StatusBadGateway},
		{domain.ErrStorageNotConfigured, fiber.StatusServiceUnavailable},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, errorStatus(tc.err), tc.err.Error())
	}
}
