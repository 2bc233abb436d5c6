package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUnauthorized = errors.New("authentication required")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenReused  = errors.New("refresh token reused or superseded")

	ErrVideoNotFound   = errors.New("video not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotOwner        = errors.New("resource owned by different user")

	ErrSelfSubscription = errors.New("can't subscribe to own channel")

	ErrMediaUploadFailed = errors.New("media upload failed")
)
