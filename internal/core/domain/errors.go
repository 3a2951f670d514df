package domain

import "errors"

var (
	ErrJobNotFound          = errors.New("job not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrForbidden            = errors.New("access forbidden")
	ErrUserBlocked          = errors.New("user is blocked")
	ErrRateLimited          = errors.New("too many requests")
	ErrValidation           = errors.New("validation failed")
	ErrRequestInProgress    = errors.New("a request with this idempotency key is still in progress")
)
