package ports

import (
	"context"
	"time"

	"mystic/contexts/asset-core/asset-registry/domain/entities"
	"mystic/internal/shared/events"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for event identifiers.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AccessControl is the role guard wired in from identity-access. Operator
// accounts double as the candidate signing identities for claim and withdraw
// authorizations.
type AccessControl interface {
	RequireOperator(ctx context.Context, account string) error
	OperatorAccounts(ctx context.Context) ([]string, error)
}

// Repository stores assets, approvals, and registry configuration.
// UnlockAndBumpNonce is a compare-and-swap: it fails with ErrInvalidNonce
// unless expectedNonce equals the stored nonce, and increments it in the same
// step as the unlock.
type Repository interface {
	CreateAsset(ctx context.Context, asset entities.Asset) error
	GetAsset(ctx context.Context, assetID uint64) (entities.Asset, error)
	AssetExists(ctx context.Context, assetID uint64) (bool, error)
	TransferOwner(ctx context.Context, assetID uint64, to string, updatedAt time.Time) error
	SetLocked(ctx context.Context, assetID uint64, locked bool, updatedAt time.Time) error
	UnlockAndBumpNonce(ctx context.Context, assetID uint64, expectedNonce uint64, updatedAt time.Time) error
	SetTokenURI(ctx context.Context, assetID uint64, uri string, updatedAt time.Time) error

	ApproveToken(ctx context.Context, assetID uint64, spender string) error
	TokenApproval(ctx context.Context, assetID uint64) (string, error)
	SetOperatorApproval(ctx context.Context, owner string, operator string, approved bool) error
	HasOperatorApproval(ctx context.Context, owner string, operator string) (bool, error)

	Config(ctx context.Context) (entities.RegistryConfig, error)
	SetTransferRestriction(ctx context.Context, enabled bool) error
	SetBaseURI(ctx context.Context, uri string) error
	SetMarketplaceAllowed(ctx context.Context, account string, allowed bool) error
	IsMarketplaceAllowed(ctx context.Context, account string) (bool, error)
}

// EventEnvelope is the shared event shape.
type EventEnvelope = events.Envelope

// EventPublisher receives asset lifecycle events after the state change
// committed.
type EventPublisher interface {
	Publish(ctx context.Context, envelope EventEnvelope) error
}
