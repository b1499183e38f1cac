package upload

import "errors"

var (
	ErrUploadNotFound  = errors.New("upload not found")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("only jpeg, png, webp or heic images are accepted")
	ErrEmptyFile       = errors.New("file is empty")
)
