package memory

import (
	"context"
	"sync"
	"time"

	domainerrors "mystic/contexts/community-experience/daily-checkin/domain/errors"
)

// Store is the in-memory check-in repository used by tests and in-memory
// wiring.
type Store struct {
	mu      sync.Mutex
	lastDay map[string]int64
}

func NewStore() *Store {
	return &Store{lastDay: make(map[string]int64)}
}

func (s *Store) LastDayIndex(_ context.Context, account string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastDay[account]
	return last, ok, nil
}

func (s *Store) Record(_ context.Context, account string, dayIndex int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastDay[account]; ok && last == dayIndex {
		return domainerrors.ErrAlreadyCheckedIn
	}
	s.lastDay[account] = dayIndex
	return nil
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
