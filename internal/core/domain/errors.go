package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidRole        = errors.New("invalid role")

	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrForbidden         = errors.New("access forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotACourier       = errors.New("assignee is not a courier")
	ErrEmptyOrder        = errors.New("order has no items")
)
