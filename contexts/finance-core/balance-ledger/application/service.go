package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"
	"mystic/contexts/finance-core/balance-ledger/ports"

	"github.com/shopspring/decimal"
)

// Service exposes ERC20-style ledger operations. Zero-amount transfers are
// permitted (a fee of zero still "moves"); negative amounts never are.
type Service struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (s Service) BalanceOf(ctx context.Context, account string) (decimal.Decimal, error) {
	if strings.TrimSpace(account) == "" {
		return decimal.Zero, domainerrors.ErrInvalidAccount
	}
	return s.Repo.BalanceOf(ctx, account)
}

func (s Service) Allowance(ctx context.Context, owner string, spender string) (decimal.Decimal, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(spender) == "" {
		return decimal.Zero, domainerrors.ErrInvalidAccount
	}
	return s.Repo.Allowance(ctx, owner, spender)
}

// Mint credits freshly issued units to an account. Seeding path for fixtures
// and composition; the authorization engine itself never issues units.
func (s Service) Mint(ctx context.Context, to string, amount decimal.Decimal) error {
	if strings.TrimSpace(to) == "" {
		return domainerrors.ErrInvalidAccount
	}
	if amount.IsNegative() {
		return domainerrors.ErrInvalidAmount
	}
	return s.Repo.Credit(ctx, to, amount)
}

func (s Service) Transfer(ctx context.Context, from string, to string, amount decimal.Decimal) error {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return domainerrors.ErrInvalidAccount
	}
	if amount.IsNegative() {
		return domainerrors.ErrInvalidAmount
	}
	return s.Repo.Move(ctx, from, to, amount)
}

func (s Service) Approve(ctx context.Context, owner string, spender string, amount decimal.Decimal) error {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(spender) == "" {
		return domainerrors.ErrInvalidAccount
	}
	if amount.IsNegative() {
		return domainerrors.ErrInvalidAmount
	}
	return s.Repo.SetAllowance(ctx, owner, spender, amount)
}

func (s Service) TransferFrom(ctx context.Context, spender string, from string, to string, amount decimal.Decimal) error {
	if strings.TrimSpace(spender) == "" || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return domainerrors.ErrInvalidAccount
	}
	if amount.IsNegative() {
		return domainerrors.ErrInvalidAmount
	}
	return s.Repo.MoveFrom(ctx, spender, from, to, amount)
}
