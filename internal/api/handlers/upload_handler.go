package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/internal/api/presenters"
	"glucolog/internal/utils/storage"
)

type (
	UploadHandler interface {
		UploadPhoto(c *fiber.Ctx) error
	}

	uploadHandler struct {
		s3 storage.AwsS3
	}
)

func NewUploadHandler(s3 storage.AwsS3) UploadHandler {
	return &uploadHandler{s3: s3}
}

func (h *uploadHandler) UploadPhoto(c *fiber.Ctx) error {
	if !h.s3.Enabled() {
		return presenters.ErrorResponse(c, fiber.StatusServiceUnavailable, domain.MessageFailedUpload, domain.ErrStorageNotConfigured)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpload, domain.ErrFileRequired)
	}

	fileName := fmt.Sprintf("meal-%s-%s", time.Now().UTC().Format("20060102"), uuid.NewString())
	objectKey, err := h.s3.UploadFile(c.Context(), fileName, file, storage.MealPhotoFolder, storage.AllowImage...)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedUpload, err)
	}

	return presenters.SuccessResponse(c, domain.UploadResponse{URL: h.s3.GetPublicLinkKey(objectKey)}, fiber.StatusCreated, domain.MessageSuccessUpload)
}
