package errors

import "errors"

var (
	ErrInvalidAccount   = errors.New("account must not be empty")
	ErrAlreadyCheckedIn = errors.New("account already checked in today")
)
