package ports

import (
	"context"
	"time"

	"mystic/contexts/identity-access/access-control/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// Repository stores (role, account) membership. Put and Delete are idempotent
// at the store layer; the application decides when repetition is an error.
type Repository interface {
	HasRole(ctx context.Context, role entities.Role, account string) (bool, error)
	PutGrant(ctx context.Context, grant entities.Grant) error
	DeleteGrant(ctx context.Context, role entities.Role, account string) error
	AccountsWithRole(ctx context.Context, role entities.Role) ([]string, error)
	CountAccountsWithRole(ctx context.Context, role entities.Role) (int, error)
}
