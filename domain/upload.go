package domain

import "errors"

var (
	MessageSuccessUpload = "file uploaded successfully"
	MessageFailedUpload  = "failed to upload file"

	ErrFileRequired         = errors.New("file is required")
	ErrFileTypeNotAllowed   = errors.New("file type not allowed")
	ErrStorageNotConfigured = errors.New("photo storage is not configured")
	ErrUploadFailed         = errors.New("photo storage upload failed")
)

type UploadResponse struct {
	URL string `json:"url"`
}
