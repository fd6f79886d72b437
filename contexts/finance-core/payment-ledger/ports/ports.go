package ports

import (
	"context"
	"time"

	"mystic/internal/shared/events"

	"github.com/shopspring/decimal"
)

// Clock abstracts current time so expiry checks are testable.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for event identifiers.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AccessControl is the role guard wired in from identity-access.
type AccessControl interface {
	RequireOperator(ctx context.Context, account string) error
	OperatorAccounts(ctx context.Context) ([]string, error)
}

// TokenLedger is the fungible balance collaborator. Its failures
// (insufficient balance, insufficient allowance) propagate unchanged.
type TokenLedger interface {
	BalanceOf(ctx context.Context, account string) (decimal.Decimal, error)
	Allowance(ctx context.Context, owner string, spender string) (decimal.Decimal, error)
	Transfer(ctx context.Context, from string, to string, amount decimal.Decimal) error
	TransferFrom(ctx context.Context, spender string, from string, to string, amount decimal.Decimal) error
}

// NonceRepository stores per-account claim-withdraw nonces. BumpNonce is a
// compare-and-swap: it fails with ErrInvalidNonce unless expectedNonce equals
// the stored nonce, and increments it in the same step.
type NonceRepository interface {
	NonceOf(ctx context.Context, account string) (uint64, error)
	BumpNonce(ctx context.Context, account string, expectedNonce uint64) error
}

// EventEnvelope is the shared event shape.
type EventEnvelope = events.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, envelope EventEnvelope) error
}
