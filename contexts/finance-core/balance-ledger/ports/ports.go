package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository is the balance/allowance store. Transfer-shaped methods are
// atomic: the balance check and both account mutations happen under one lock
// or transaction, so a failed transfer leaves no trace.
type Repository interface {
	BalanceOf(ctx context.Context, account string) (decimal.Decimal, error)
	Allowance(ctx context.Context, owner string, spender string) (decimal.Decimal, error)
	Credit(ctx context.Context, account string, amount decimal.Decimal) error
	Move(ctx context.Context, from string, to string, amount decimal.Decimal) error
	MoveFrom(ctx context.Context, spender string, from string, to string, amount decimal.Decimal) error
	SetAllowance(ctx context.Context, owner string, spender string, amount decimal.Decimal) error
}
