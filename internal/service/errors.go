package service

import "errors"

// Business-layer sentinel errors; handlers map them to HTTP statuses.
var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyMessage       = errors.New("message content or image is required")
	ErrMissingProfilePic  = errors.New("profile picture is required")
)
