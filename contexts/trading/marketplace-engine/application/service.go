package application

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	balanceerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"
	"mystic/contexts/trading/marketplace-engine/domain/entities"
	domainerrors "mystic/contexts/trading/marketplace-engine/domain/errors"
	"mystic/contexts/trading/marketplace-engine/domain/services"
	"mystic/contexts/trading/marketplace-engine/ports"

	"github.com/shopspring/decimal"
)

const sourceService = "marketplace-engine"

// Service runs the order book. Orders are approve-not-escrow: the seller
// grants the engine account transfer rights and keeps the asset until
// execution moves it directly to the buyer. State-changing operations run
// under a single writer lock so order-state checks and the mutations they
// guard are atomic relative to every other call.
type Service struct {
	Repo     ports.Repository
	Registry ports.AssetRegistry
	Ledger   ports.TokenLedger
	Access   ports.AccessControl
	Outbox   ports.Outbox
	IDGen    ports.IDGenerator
	Clock    ports.Clock
	Logger   *slog.Logger
	Engine   string

	mu sync.Mutex
}

// CreateOrder publishes a standing sell offer. The per-item fee is
// snapshotted from the current fee rate so later rate changes never touch
// this order.
func (s *Service) CreateOrder(ctx context.Context, seller string, assetID uint64, priceUnit decimal.Decimal, quantity uint64) (uint64, error) {
	if !priceUnit.IsPositive() {
		return 0, domainerrors.ErrPriceInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.Registry.OwnerOf(ctx, assetID)
	if err != nil {
		return 0, err
	}
	// A unique asset cannot cover a quantity above one.
	if owner != seller || quantity != 1 {
		return 0, domainerrors.ErrNotOwnerOrBalance
	}
	approved, err := s.Registry.IsApprovedFor(ctx, assetID, s.Engine)
	if err != nil {
		return 0, err
	}
	if !approved {
		return 0, domainerrors.ErrNotApproved
	}

	cfg, err := s.Repo.FeeConfig(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	order := entities.Order{
		AssetID:    assetID,
		Seller:     seller,
		PriceUnit:  priceUnit,
		PerItemFee: services.PerItemFee(cfg.FeeRate, priceUnit),
		Quantity:   quantity,
		Status:     entities.OrderOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	orderID, err := s.Repo.CreateOrder(ctx, order)
	if err != nil {
		return 0, err
	}

	s.logAndStage(ctx, "order.created", orderID, map[string]any{
		"order_id":     orderID,
		"asset_id":     assetID,
		"seller":       seller,
		"price_unit":   priceUnit.String(),
		"per_item_fee": order.PerItemFee.String(),
		"quantity":     quantity,
	})
	return orderID, nil
}

// CancelOrder withdraws an open order. No funds move; the asset was never
// escrowed.
func (s *Service) CancelOrder(ctx context.Context, caller string, orderID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.openOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Seller != caller {
		return domainerrors.ErrUnauthorized
	}

	order.Status = entities.OrderCancelled
	order.UpdatedAt = s.now()
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return err
	}

	s.logAndStage(ctx, "order.cancelled", orderID, map[string]any{
		"order_id": orderID,
		"seller":   caller,
	})
	return nil
}

// ExecuteOrder fills an open order: the asset moves seller to buyer through
// the registry, and the payment splits buyer to seller and buyer to the fee
// holder through the ledger. The buyer restates price and quantity so a
// front-run change fails loudly instead of charging an unexpected amount.
func (s *Service) ExecuteOrder(ctx context.Context, buyer string, orderID uint64, priceUnit decimal.Decimal, quantity uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.openOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !priceUnit.Equal(order.PriceUnit) {
		return domainerrors.ErrPriceMismatch
	}
	if quantity == 0 || quantity > order.Quantity {
		return domainerrors.ErrQuantityMismatch
	}
	if buyer == order.Seller {
		return domainerrors.ErrUnauthorizedSeller
	}

	cfg, err := s.Repo.FeeConfig(ctx)
	if err != nil {
		return err
	}

	qty := decimal.NewFromUint64(quantity)
	total := order.PriceUnit.Mul(qty)
	fee := order.PerItemFee.Mul(qty)

	// Prove the full payment can settle before anything moves. The asset
	// transfer is not compensatable, so a buyer who cannot cover the total
	// must fail here with no observable trace.
	balance, err := s.Ledger.BalanceOf(ctx, buyer)
	if err != nil {
		return err
	}
	if balance.LessThan(total) {
		return balanceerrors.ErrInsufficientBalance
	}
	allowance, err := s.Ledger.Allowance(ctx, buyer, s.Engine)
	if err != nil {
		return err
	}
	if allowance.LessThan(total) {
		return balanceerrors.ErrInsufficientAllowance
	}

	// The engine account is allowlisted, so the transfer clears the
	// registry's restriction hook; lock and approval failures propagate.
	if err := s.Registry.Transfer(ctx, s.Engine, order.Seller, buyer, order.AssetID); err != nil {
		return err
	}

	if err := s.Ledger.TransferFrom(ctx, s.Engine, buyer, order.Seller, total.Sub(fee)); err != nil {
		return err
	}
	if err := s.Ledger.TransferFrom(ctx, s.Engine, buyer, cfg.FeeHolder, fee); err != nil {
		return err
	}

	order.Quantity -= quantity
	if order.Quantity == 0 {
		order.Status = entities.OrderExecuted
	}
	order.UpdatedAt = s.now()
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return err
	}

	s.logAndStage(ctx, "order.executed", orderID, map[string]any{
		"order_id":   orderID,
		"asset_id":   order.AssetID,
		"seller":     order.Seller,
		"buyer":      buyer,
		"quantity":   quantity,
		"total":      total.String(),
		"fee":        fee.String(),
		"fee_holder": cfg.FeeHolder,
	})
	return nil
}

// SetFeeRate changes the rate applied to future orders. Open orders keep
// their snapshot.
func (s *Service) SetFeeRate(ctx context.Context, caller string, rate int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Access.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if !services.ValidFeeRate(rate) {
		return domainerrors.ErrFeeRateInvalid
	}
	return s.Repo.SetFeeRate(ctx, rate)
}

// SetFeeHolder changes the fee proceeds account.
func (s *Service) SetFeeHolder(ctx context.Context, caller string, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Access.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if strings.TrimSpace(holder) == "" || holder == s.Engine {
		return domainerrors.ErrInvalidFeeHolder
	}
	return s.Repo.SetFeeHolder(ctx, holder)
}

// GetOrder returns an order in any status.
func (s *Service) GetOrder(ctx context.Context, orderID uint64) (entities.Order, error) {
	return s.Repo.GetOrder(ctx, orderID)
}

// OpenOrders lists orders still available for execution.
func (s *Service) OpenOrders(ctx context.Context) ([]entities.Order, error) {
	return s.Repo.ListOrdersByStatus(ctx, entities.OrderOpen)
}

// FeeConfig returns the current fee policy.
func (s *Service) FeeConfig(ctx context.Context) (entities.FeeConfig, error) {
	return s.Repo.FeeConfig(ctx)
}

func (s *Service) openOrder(ctx context.Context, orderID uint64) (entities.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}
	if !order.Open() {
		return entities.Order{}, domainerrors.ErrNotPublished
	}
	return order, nil
}

func (s *Service) logAndStage(ctx context.Context, eventType string, orderID uint64, payload map[string]any) {
	logger := ResolveLogger(s.Logger)
	logger.Info("order state changed",
		"event", strings.ReplaceAll(eventType, ".", "_"),
		"module", "trading/marketplace-engine",
		"layer", "application",
		"order_id", orderID,
	)

	if s.Outbox == nil {
		return
	}
	eventID := ""
	if s.IDGen != nil {
		if id, err := s.IDGen.NewID(ctx); err == nil {
			eventID = id
		}
	}
	if err := s.Outbox.Enqueue(ctx, ports.EventEnvelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  sourceService,
		OccurredAtUTC:  s.now(),
		EntityType:     "order",
		EntityID:       strconv.FormatUint(orderID, 10),
		PayloadVersion: 1,
		Payload:        payload,
	}); err != nil {
		logger.Warn("order event staging failed",
			"event", "order_event_staging_failed",
			"module", "trading/marketplace-engine",
			"layer", "application",
			"order_id", orderID,
			"error", err.Error(),
		)
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
