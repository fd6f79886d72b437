package errors

import "errors"

var (
	ErrInvalidAmount         = errors.New("amount must not be negative")
	ErrInvalidAccount        = errors.New("invalid account")
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("transfer amount exceeds allowance")
)
