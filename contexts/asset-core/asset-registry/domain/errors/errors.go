package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("asset id already minted")
	ErrNotFound           = errors.New("asset not found")
	ErrAlreadyDeposited   = errors.New("asset already deposited")
	ErrNotLocked          = errors.New("asset is already unlocked")
	ErrTokenLocked        = errors.New("asset is locked")
	ErrRestrictedTransfer = errors.New("only mint transfers or allowlisted marketplace trades are permitted")
	ErrNotOwnerNorApproved = errors.New("transfer caller is not owner nor approved")
	ErrVerificationFailed = errors.New("signature does not recover to an operator")
	ErrInvalidNonce       = errors.New("nonce does not match the stored withdraw nonce")
	ErrInvalidAccount     = errors.New("invalid account")
)
