package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"glucolog/internal/utils/storage"
)

func TestBodyLimitFitsLargestPhotoDataURL(t *testing.T) {
	dataURL := len(`{"type":"photo","imageData":"data:image/jpeg;base64,"}`) +
		base64.StdEncoding.EncodedLen(storage.MaxPhotoSize)

	assert.Greater(t, bodyLimit, dataURL)
}
