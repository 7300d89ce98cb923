package services

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrNoMetadata         = errors.New("no embedded metadata")
	ErrDownloadFailed     = errors.New("download failed")
	ErrDownloadTooLarge   = errors.New("download exceeds size limit")
	ErrConfirmationFailed = errors.New("confirmation message not sent")
)
