package service

import "github.com/pkg/errors"

var (
	ErrEmailTaken                = errors.New("email already registered")
	ErrLoginUserNotFound         = errors.New("user not found")
	ErrLoginPasswordDoesNotMatch = errors.New("password does not match")
	ErrResetTokenInvalid         = errors.New("reset token invalid or expired")

	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidActivity  = errors.New("invalid activity")
	ErrInvalidJobType   = errors.New("invalid job type")
)
