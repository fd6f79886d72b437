package memory

import (
	"context"
	"sync"
	"time"

	"mystic/contexts/identity-access/access-control/domain/entities"
)

type grantKey struct {
	Role    entities.Role
	Account string
}

// Store is the in-memory role repository used by tests and in-memory wiring.
type Store struct {
	mu     sync.RWMutex
	grants map[grantKey]entities.Grant
}

func NewStore() *Store {
	return &Store{grants: make(map[grantKey]entities.Grant)}
}

func (s *Store) HasRole(_ context.Context, role entities.Role, account string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[grantKey{Role: role, Account: account}]
	return ok, nil
}

func (s *Store) PutGrant(_ context.Context, grant entities.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grantKey{Role: grant.Role, Account: grant.Account}] = grant
	return nil
}

func (s *Store) DeleteGrant(_ context.Context, role entities.Role, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, grantKey{Role: role, Account: account})
	return nil
}

func (s *Store) AccountsWithRole(_ context.Context, role entities.Role) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]string, 0)
	for key := range s.grants {
		if key.Role == role {
			accounts = append(accounts, key.Account)
		}
	}
	return accounts, nil
}

func (s *Store) CountAccountsWithRole(ctx context.Context, role entities.Role) (int, error) {
	accounts, err := s.AccountsWithRole(ctx, role)
	if err != nil {
		return 0, err
	}
	return len(accounts), nil
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
