package memory

import (
	"context"
	"sync"
	"time"

	domainerrors "mystic/contexts/finance-core/payment-ledger/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory nonce repository used by tests and in-memory
// wiring.
type Store struct {
	mu     sync.Mutex
	nonces map[string]uint64
}

func NewStore() *Store {
	return &Store{nonces: make(map[string]uint64)}
}

func (s *Store) NonceOf(_ context.Context, account string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonces[account], nil
}

func (s *Store) BumpNonce(_ context.Context, account string, expectedNonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nonces[account] != expectedNonce {
		return domainerrors.ErrInvalidNonce
	}
	s.nonces[account] = expectedNonce + 1
	return nil
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID implements ports.IDGenerator.
func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
