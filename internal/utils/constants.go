package utils

import "time"

const (
	AppName = "Handicapper"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	DefaultTransactionHistoryLimit = 50
	DefaultChatHistoryLimit        = 100
	DefaultSuggestionLimit         = 10

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 30 * 24 * time.Hour

	// File Upload
	MaxImageSize = 5 * 1024 * 1024 // 5MB
)

var AllowedImageContentTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
	ErrFileUploadFailed = "file upload failed"
)

// Context keys set by the auth middleware.
const (
	ContextUserID    = "user_id"
	ContextUserType  = "user_type"
	ContextRequestID = "request_id"
)
