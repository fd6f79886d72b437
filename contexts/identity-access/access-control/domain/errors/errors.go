package errors

import "errors"

var (
	ErrUnknownRole    = errors.New("unknown role")
	ErrInvalidAccount = errors.New("invalid account")
	ErrUnauthorized   = errors.New("caller is missing the required role")
	ErrLastAdmin      = errors.New("cannot revoke the last remaining admin")
)
