package errors

import "errors"

var (
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidAccount        = errors.New("account must not be empty")
	ErrInsufficientAllowance = errors.New("deposit amount exceeds allowance")
	ErrVerificationFailed    = errors.New("signature does not recover to an authorized operator")
	ErrInvalidNonce          = errors.New("supplied nonce does not match the stored nonce")
	ErrExpired               = errors.New("authorization has expired")
)
