package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mystic/contexts/trading/marketplace-engine/domain/entities"
	domainerrors "mystic/contexts/trading/marketplace-engine/domain/errors"
	"mystic/contexts/trading/marketplace-engine/ports"

	"github.com/google/uuid"
)

// Store is the in-memory order repository and outbox used by tests and
// in-memory wiring.
type Store struct {
	mu sync.Mutex

	orders      map[uint64]entities.Order
	nextOrderID uint64
	feeConfig   entities.FeeConfig

	outbox       []ports.OutboxEvent
	nextOutboxID uint64
}

func NewStore(feeRate int64, feeHolder string) *Store {
	return &Store{
		orders:       make(map[uint64]entities.Order),
		nextOrderID:  1,
		feeConfig:    entities.FeeConfig{FeeRate: feeRate, FeeHolder: feeHolder},
		nextOutboxID: 1,
	}
}

func (s *Store) CreateOrder(_ context.Context, order entities.Order) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.OrderID = s.nextOrderID
	s.nextOrderID++
	s.orders[order.OrderID] = order
	return order.OrderID, nil
}

func (s *Store) GetOrder(_ context.Context, orderID uint64) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return entities.Order{}, domainerrors.ErrNotPublished
	}
	return order, nil
}

func (s *Store) SaveOrder(_ context.Context, order entities.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.OrderID]; !ok {
		return domainerrors.ErrNotPublished
	}
	s.orders[order.OrderID] = order
	return nil
}

func (s *Store) ListOrdersByStatus(_ context.Context, status entities.OrderStatus) ([]entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []entities.Order
	for _, order := range s.orders {
		if order.Status == status {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderID < orders[j].OrderID
	})
	return orders, nil
}

func (s *Store) FeeConfig(_ context.Context) (entities.FeeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feeConfig, nil
}

func (s *Store) SetFeeRate(_ context.Context, rate int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeConfig.FeeRate = rate
	return nil
}

func (s *Store) SetFeeHolder(_ context.Context, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeConfig.FeeHolder = holder
	return nil
}

func (s *Store) Enqueue(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, ports.OutboxEvent{
		ID:        s.nextOutboxID,
		Envelope:  envelope,
		Status:    ports.OutboxPending,
		CreatedAt: time.Now().UTC(),
	})
	s.nextOutboxID++
	return nil
}

func (s *Store) Pending(_ context.Context, limit int) ([]ports.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []ports.OutboxEvent
	for _, event := range s.outbox {
		if event.Status != ports.OutboxPending {
			continue
		}
		pending = append(pending, event)
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkSent(_ context.Context, id uint64, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].ID != id {
			continue
		}
		sent := sentAt.UTC()
		s.outbox[i].Status = ports.OutboxSent
		s.outbox[i].SentAt = &sent
		return nil
	}
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
