package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mystic/contexts/identity-access/access-control/domain/entities"
	domainerrors "mystic/contexts/identity-access/access-control/domain/errors"
	"mystic/contexts/identity-access/access-control/ports"
)

// Service enforces admin-gated, idempotent role membership changes. Role
// changes take effect immediately; there is no caching layer in front of the
// repository.
type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger

	mu sync.Mutex
}

// GrantRole assigns role to account. Caller must hold admin. Granting a role
// the account already holds is a no-op, not an error.
func (s *Service) GrantRole(ctx context.Context, caller string, role entities.Role, account string) error {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(account) == "" {
		return domainerrors.ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, entities.RoleAdmin, caller); err != nil {
		return err
	}

	held, err := s.Repo.HasRole(ctx, role, account)
	if err != nil {
		return err
	}
	if held {
		return nil
	}

	if err := s.Repo.PutGrant(ctx, entities.Grant{
		Role:      role,
		Account:   account,
		GrantedBy: caller,
		GrantedAt: s.now(),
	}); err != nil {
		return err
	}

	logger.Info("role granted",
		"event", "access_role_granted",
		"module", "identity-access/access-control",
		"layer", "application",
		"role", string(role),
		"account", account,
		"granted_by", caller,
	)
	return nil
}

// RevokeRole removes role from account. Caller must hold admin. Revoking a
// role the account does not hold is a no-op. Revoking the last remaining
// admin is rejected so privileged operations can never be locked out.
func (s *Service) RevokeRole(ctx context.Context, caller string, role entities.Role, account string) error {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(account) == "" {
		return domainerrors.ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, entities.RoleAdmin, caller); err != nil {
		return err
	}

	held, err := s.Repo.HasRole(ctx, role, account)
	if err != nil {
		return err
	}
	if !held {
		return nil
	}

	if role == entities.RoleAdmin {
		admins, err := s.Repo.CountAccountsWithRole(ctx, entities.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return domainerrors.ErrLastAdmin
		}
	}

	if err := s.Repo.DeleteGrant(ctx, role, account); err != nil {
		return err
	}

	logger.Info("role revoked",
		"event", "access_role_revoked",
		"module", "identity-access/access-control",
		"layer", "application",
		"role", string(role),
		"account", account,
		"revoked_by", caller,
	)
	return nil
}

// HasRole reports current membership.
func (s *Service) HasRole(ctx context.Context, role entities.Role, account string) (bool, error) {
	return s.Repo.HasRole(ctx, role, account)
}

// RequireAdmin fails with ErrUnauthorized unless account holds admin.
func (s *Service) RequireAdmin(ctx context.Context, account string) error {
	return s.requireRole(ctx, entities.RoleAdmin, account)
}

// RequireOperator fails with ErrUnauthorized unless account holds operator.
func (s *Service) RequireOperator(ctx context.Context, account string) error {
	return s.requireRole(ctx, entities.RoleOperator, account)
}

// OperatorAccounts lists the accounts whose signatures authorize claims and
// withdrawals.
func (s *Service) OperatorAccounts(ctx context.Context) ([]string, error) {
	return s.Repo.AccountsWithRole(ctx, entities.RoleOperator)
}

// Bootstrap seeds a grant without an admin check. Used once at composition
// time to install the initial admin and operator from configuration.
func (s *Service) Bootstrap(ctx context.Context, role entities.Role, account string) error {
	if strings.TrimSpace(account) == "" {
		return domainerrors.ErrInvalidAccount
	}
	return s.Repo.PutGrant(ctx, entities.Grant{
		Role:      role,
		Account:   account,
		GrantedBy: account,
		GrantedAt: s.now(),
	})
}

func (s *Service) requireRole(ctx context.Context, role entities.Role, account string) error {
	if strings.TrimSpace(account) == "" {
		return domainerrors.ErrUnauthorized
	}
	held, err := s.Repo.HasRole(ctx, role, account)
	if err != nil {
		return err
	}
	if !held {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
