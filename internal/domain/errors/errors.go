package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrConflict           = errors.New("conflicting resolution")
	ErrUnmatchedEvent     = errors.New("no matching occurrence")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidRecurrence  = errors.New("invalid recurrence rule")
	ErrInvalidQuantity    = errors.New("invalid quantity")
)
