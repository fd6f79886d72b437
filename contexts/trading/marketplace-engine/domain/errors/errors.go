package errors

import "errors"

var (
	ErrPriceInvalid       = errors.New("order price must be greater than zero")
	ErrNotOwnerOrBalance  = errors.New("seller does not hold the offered quantity of the asset")
	ErrNotApproved        = errors.New("engine is not approved to transfer the asset")
	ErrNotPublished       = errors.New("no open order with that id")
	ErrUnauthorized       = errors.New("caller is not the order's seller")
	ErrPriceMismatch      = errors.New("supplied price does not match the order")
	ErrQuantityMismatch   = errors.New("requested quantity exceeds the order's remaining quantity")
	ErrUnauthorizedSeller = errors.New("seller cannot execute their own order")
	ErrFeeRateInvalid     = errors.New("fee rate must be in [0, 1000000)")
	ErrInvalidFeeHolder   = errors.New("fee holder must not be empty or the engine account")
)
