package database

import "errors"

var (
	// ErrSlugExists is returned when an attempt is made to create
	// a shortened URL with a slug that is already taken.
	ErrSlugExists = errors.New("slug exists")
	// ErrURLNotFound is returned when no URL matches the requested
	// identifier within the caller's scope.
	ErrURLNotFound = errors.New("url not found")
	// ErrUsernameExists is returned when an attempt is made to register
	// a username that is already taken.
	ErrUsernameExists = errors.New("username exists")
	// ErrUserNotFound is returned when no user matches the requested
	// username.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenNotFound is returned when no user owns the presented token.
	ErrTokenNotFound = errors.New("token not found")
)
