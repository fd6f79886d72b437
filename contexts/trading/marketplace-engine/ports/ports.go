package ports

import (
	"context"
	"time"

	"mystic/contexts/trading/marketplace-engine/domain/entities"
	"mystic/internal/shared/events"

	"github.com/shopspring/decimal"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for event identifiers.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AccessControl is the role guard wired in from identity-access. Fee policy
// changes are admin operations.
type AccessControl interface {
	RequireAdmin(ctx context.Context, account string) error
}

// AssetRegistry is the ownership collaborator. Transfer runs the registry's
// transfer hook; the engine account is expected to be on the marketplace
// allowlist and approved by the seller.
type AssetRegistry interface {
	OwnerOf(ctx context.Context, assetID uint64) (string, error)
	IsApprovedFor(ctx context.Context, assetID uint64, spender string) (bool, error)
	Transfer(ctx context.Context, caller string, from string, to string, assetID uint64) error
}

// TokenLedger is the fungible payment collaborator. The buyer approves the
// engine account as spender before execution; ledger failures propagate
// unchanged. Allowance and BalanceOf let the engine prove the payment can
// settle before it moves the asset.
type TokenLedger interface {
	BalanceOf(ctx context.Context, account string) (decimal.Decimal, error)
	Allowance(ctx context.Context, owner string, spender string) (decimal.Decimal, error)
	TransferFrom(ctx context.Context, spender string, from string, to string, amount decimal.Decimal) error
}

// Repository stores orders and the fee configuration. CreateOrder assigns
// and returns the next order id.
type Repository interface {
	CreateOrder(ctx context.Context, order entities.Order) (uint64, error)
	GetOrder(ctx context.Context, orderID uint64) (entities.Order, error)
	SaveOrder(ctx context.Context, order entities.Order) error
	ListOrdersByStatus(ctx context.Context, status entities.OrderStatus) ([]entities.Order, error)

	FeeConfig(ctx context.Context) (entities.FeeConfig, error)
	SetFeeRate(ctx context.Context, rate int64) error
	SetFeeHolder(ctx context.Context, holder string) error
}

// EventEnvelope is the shared event shape.
type EventEnvelope = events.Envelope

// OutboxStatus values for staged events.
const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
)

// OutboxEvent is an event staged alongside the state change that produced
// it, relayed to the bus by a background worker.
type OutboxEvent struct {
	ID        uint64
	Envelope  EventEnvelope
	Status    string
	CreatedAt time.Time
	SentAt    *time.Time
}

// Outbox stages and drains events.
type Outbox interface {
	Enqueue(ctx context.Context, envelope EventEnvelope) error
	Pending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id uint64, sentAt time.Time) error
}

// EventPublisher delivers envelopes to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, envelope EventEnvelope) error
}
