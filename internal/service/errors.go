package service

import "errors"

// Sentinel errors raised by services and translated to HTTP statuses at the
// handler boundary.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state transition")
)
