package memory

import (
	"context"
	"sync"

	domainerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"

	"github.com/shopspring/decimal"
)

type allowanceKey struct {
	Owner   string
	Spender string
}

// Store holds balances and allowances behind a single mutex so every
// transfer-shaped operation is atomic relative to all others.
type Store struct {
	mu         sync.RWMutex
	balances   map[string]decimal.Decimal
	allowances map[allowanceKey]decimal.Decimal
}

func NewStore() *Store {
	return &Store{
		balances:   make(map[string]decimal.Decimal),
		allowances: make(map[allowanceKey]decimal.Decimal),
	}
}

func (s *Store) BalanceOf(_ context.Context, account string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account], nil
}

func (s *Store) Allowance(_ context.Context, owner string, spender string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowances[allowanceKey{Owner: owner, Spender: spender}], nil
}

func (s *Store) Credit(_ context.Context, account string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] = s.balances[account].Add(amount)
	return nil
}

func (s *Store) Move(_ context.Context, from string, to string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(from, to, amount)
}

func (s *Store) MoveFrom(_ context.Context, spender string, from string, to string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := allowanceKey{Owner: from, Spender: spender}
	allowance := s.allowances[key]
	if allowance.LessThan(amount) {
		return domainerrors.ErrInsufficientAllowance
	}
	if err := s.moveLocked(from, to, amount); err != nil {
		return err
	}
	s.allowances[key] = allowance.Sub(amount)
	return nil
}

func (s *Store) SetAllowance(_ context.Context, owner string, spender string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowances[allowanceKey{Owner: owner, Spender: spender}] = amount
	return nil
}

func (s *Store) moveLocked(from string, to string, amount decimal.Decimal) error {
	balance := s.balances[from]
	if balance.LessThan(amount) {
		return domainerrors.ErrInsufficientBalance
	}
	s.balances[from] = balance.Sub(amount)
	s.balances[to] = s.balances[to].Add(amount)
	return nil
}
