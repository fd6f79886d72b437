package application_test

import (
	"context"
	"errors"
	"testing"

	registrymemory "mystic/contexts/asset-core/asset-registry/adapters/memory"
	registryapp "mystic/contexts/asset-core/asset-registry/application"
	registryerrors "mystic/contexts/asset-core/asset-registry/domain/errors"
	balanceledger "mystic/contexts/finance-core/balance-ledger"
	balanceerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"
	marketmemory "mystic/contexts/trading/marketplace-engine/adapters/memory"
	"mystic/contexts/trading/marketplace-engine/application"
	"mystic/contexts/trading/marketplace-engine/domain/entities"
	domainerrors "mystic/contexts/trading/marketplace-engine/domain/errors"
	"mystic/contexts/trading/marketplace-engine/ports"

	"github.com/shopspring/decimal"
)

const (
	engineAccount = "market-engine"
	feeHolder     = "fee-holder"
	operator      = "operator-1"
	admin         = "admin-1"
	seller        = "alice"
	buyer         = "bob"
)

type accessStub struct {
	operators map[string]bool
	admins    map[string]bool
}

func (a accessStub) RequireOperator(_ context.Context, account string) error {
	if !a.operators[account] {
		return errors.New("caller is missing the required role")
	}
	return nil
}

func (a accessStub) RequireAdmin(_ context.Context, account string) error {
	if !a.admins[account] {
		return errors.New("caller is missing the required role")
	}
	return nil
}

func (a accessStub) OperatorAccounts(_ context.Context) ([]string, error) {
	accounts := make([]string, 0, len(a.operators))
	for account := range a.operators {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

type fixture struct {
	market   *application.Service
	registry *registryapp.Service
	ledger   balanceledger.Module
	store    *marketmemory.Store
}

func newFixture(t *testing.T, feeRate int64) fixture {
	t.Helper()
	access := accessStub{
		operators: map[string]bool{operator: true},
		admins:    map[string]bool{admin: true},
	}
	registryStore := registrymemory.NewStore("https://assets.example/")
	registry := &registryapp.Service{
		Repo:   registryStore,
		Access: access,
		IDGen:  registryStore,
		Clock:  registryStore,
	}
	ledger := balanceledger.NewInMemoryModule(nil)
	store := marketmemory.NewStore(feeRate, feeHolder)
	market := &application.Service{
		Repo:     store,
		Registry: registry,
		Ledger:   ledger.Service,
		Access:   access,
		Outbox:   store,
		IDGen:    store,
		Clock:    store,
		Engine:   engineAccount,
	}
	return fixture{market: market, registry: registry, ledger: ledger, store: store}
}

// listAsset mints the asset to the seller and grants the engine transfer
// rights, the preconditions every order shares.
func (f fixture) listAsset(t *testing.T, assetID uint64) {
	t.Helper()
	ctx := context.Background()
	if err := f.registry.Mint(ctx, operator, seller, assetID); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.registry.Approve(ctx, seller, assetID, engineAccount); err != nil {
		t.Fatalf("approve engine: %v", err)
	}
}

func (f fixture) fundBuyer(t *testing.T, amount decimal.Decimal) {
	t.Helper()
	ctx := context.Background()
	if err := f.ledger.Service.Mint(ctx, buyer, amount); err != nil {
		t.Fatalf("fund buyer: %v", err)
	}
	if err := f.ledger.Service.Approve(ctx, buyer, engineAccount, amount); err != nil {
		t.Fatalf("approve engine spend: %v", err)
	}
}

func (f fixture) balance(t *testing.T, account string) decimal.Decimal {
	t.Helper()
	balance, err := f.ledger.Service.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of %s: %v", account, err)
	}
	return balance
}

func dec(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", raw, err)
	}
	return value
}

func TestExecuteOrderSplitsPaymentAndFee(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "100000000000000000")

	f.listAsset(t, 1)
	f.fundBuyer(t, price)

	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	order, err := f.market.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if want := dec(t, "3000000000000000"); !order.PerItemFee.Equal(want) {
		t.Fatalf("per-item fee = %s, want %s", order.PerItemFee, want)
	}

	if err := f.market.ExecuteOrder(ctx, buyer, orderID, price, 1); err != nil {
		t.Fatalf("execute order: %v", err)
	}

	if got := f.balance(t, buyer); !got.IsZero() {
		t.Fatalf("buyer balance = %s, want 0", got)
	}
	if got, want := f.balance(t, seller), dec(t, "97000000000000000"); !got.Equal(want) {
		t.Fatalf("seller balance = %s, want %s", got, want)
	}
	if got, want := f.balance(t, feeHolder), dec(t, "3000000000000000"); !got.Equal(want) {
		t.Fatalf("fee holder balance = %s, want %s", got, want)
	}

	owner, err := f.registry.OwnerOf(ctx, 1)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != buyer {
		t.Fatalf("owner = %q, want %q", owner, buyer)
	}
	order, err = f.market.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("get order after execute: %v", err)
	}
	if order.Status != entities.OrderExecuted {
		t.Fatalf("status = %s, want EXECUTED", order.Status)
	}
}

func TestExecuteOrderClearsRestrictedRegistry(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000000")

	f.listAsset(t, 1)
	f.fundBuyer(t, price)
	if err := f.registry.SetTransferRestriction(ctx, operator, true); err != nil {
		t.Fatalf("set restriction: %v", err)
	}
	if err := f.registry.SetMarketplaceAllowlist(ctx, operator, engineAccount, true); err != nil {
		t.Fatalf("allowlist engine: %v", err)
	}

	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := f.market.ExecuteOrder(ctx, buyer, orderID, price, 1); err != nil {
		t.Fatalf("execute under restriction: %v", err)
	}
}

func TestCreateOrderRejectsZeroPrice(t *testing.T) {
	f := newFixture(t, 30000)
	f.listAsset(t, 1)

	_, err := f.market.CreateOrder(context.Background(), seller, 1, decimal.Zero, 1)
	if !errors.Is(err, domainerrors.ErrPriceInvalid) {
		t.Fatalf("create order error = %v, want ErrPriceInvalid", err)
	}
	orders, err := f.market.OpenOrders(context.Background())
	if err != nil {
		t.Fatalf("open orders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("open orders = %d, want 0", len(orders))
	}
}

func TestCreateOrderRequiresOwnership(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000")

	f.listAsset(t, 1)
	_, err := f.market.CreateOrder(ctx, buyer, 1, price, 1)
	if !errors.Is(err, domainerrors.ErrNotOwnerOrBalance) {
		t.Fatalf("non-owner error = %v, want ErrNotOwnerOrBalance", err)
	}
	// A unique asset cannot cover a quantity above one.
	_, err = f.market.CreateOrder(ctx, seller, 1, price, 2)
	if !errors.Is(err, domainerrors.ErrNotOwnerOrBalance) {
		t.Fatalf("quantity-2 error = %v, want ErrNotOwnerOrBalance", err)
	}
}

func TestCreateOrderRequiresEngineApproval(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()

	if err := f.registry.Mint(ctx, operator, seller, 1); err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err := f.market.CreateOrder(ctx, seller, 1, dec(t, "1000"), 1)
	if !errors.Is(err, domainerrors.ErrNotApproved) {
		t.Fatalf("unapproved error = %v, want ErrNotApproved", err)
	}
}

func TestFeeSnapshotSurvivesRateChange(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000000")

	f.listAsset(t, 1)
	f.fundBuyer(t, price)

	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := f.market.SetFeeRate(ctx, admin, 500000); err != nil {
		t.Fatalf("set fee rate: %v", err)
	}
	if err := f.market.ExecuteOrder(ctx, buyer, orderID, price, 1); err != nil {
		t.Fatalf("execute order: %v", err)
	}

	// The snapshotted 3% applies, not the later 50%.
	if got, want := f.balance(t, feeHolder), dec(t, "30000"); !got.Equal(want) {
		t.Fatalf("fee holder balance = %s, want %s", got, want)
	}
	if got, want := f.balance(t, seller), dec(t, "970000"); !got.Equal(want) {
		t.Fatalf("seller balance = %s, want %s", got, want)
	}
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000")

	f.listAsset(t, 1)
	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := f.market.CancelOrder(ctx, buyer, orderID); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("cancel by non-seller error = %v, want ErrUnauthorized", err)
	}
	if err := f.market.CancelOrder(ctx, seller, orderID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := f.market.CancelOrder(ctx, seller, orderID); !errors.Is(err, domainerrors.ErrNotPublished) {
		t.Fatalf("second cancel error = %v, want ErrNotPublished", err)
	}
	if err := f.market.ExecuteOrder(ctx, buyer, orderID, price, 1); !errors.Is(err, domainerrors.ErrNotPublished) {
		t.Fatalf("execute cancelled error = %v, want ErrNotPublished", err)
	}

	// The seller keeps the asset; cancellation moves nothing.
	owner, err := f.registry.OwnerOf(ctx, 1)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != seller {
		t.Fatalf("owner = %q, want %q", owner, seller)
	}
}

func TestExecuteOrderRejectsSelfTrade(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000")

	f.listAsset(t, 1)
	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := f.market.ExecuteOrder(ctx, seller, orderID, price, 1); !errors.Is(err, domainerrors.ErrUnauthorizedSeller) {
		t.Fatalf("self-trade error = %v, want ErrUnauthorizedSeller", err)
	}

	order, err := f.market.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != entities.OrderOpen {
		t.Fatalf("status = %s, want OPEN", order.Status)
	}
}

func TestExecuteOrderRejectsMismatches(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000")

	f.listAsset(t, 1)
	f.fundBuyer(t, price)
	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := f.market.ExecuteOrder(ctx, buyer, orderID, dec(t, "999"), 1); !errors.Is(err, domainerrors.ErrPriceMismatch) {
		t.Fatalf("price mismatch error = %v, want ErrPriceMismatch", err)
	}
	if err := f.market.ExecuteOrder(ctx, buyer, orderID, price, 2); !errors.Is(err, domainerrors.ErrQuantityMismatch) {
		t.Fatalf("quantity mismatch error = %v, want ErrQuantityMismatch", err)
	}
	if err := f.market.ExecuteOrder(ctx, buyer, orderID, price, 0); !errors.Is(err, domainerrors.ErrQuantityMismatch) {
		t.Fatalf("zero quantity error = %v, want ErrQuantityMismatch", err)
	}
}

func TestExecuteOrderPropagatesInsufficientBalance(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000")

	f.listAsset(t, 1)
	// Buyer approves but holds nothing.
	if err := f.ledger.Service.Approve(ctx, buyer, engineAccount, price); err != nil {
		t.Fatalf("approve: %v", err)
	}
	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	err = f.market.ExecuteOrder(ctx, buyer, orderID, price, 1)
	if !errors.Is(err, balanceerrors.ErrInsufficientBalance) {
		t.Fatalf("execute error = %v, want ledger ErrInsufficientBalance", err)
	}
	// The failed execution leaves no trace: the seller keeps the asset, the
	// order stays open, and no balance moved.
	owner, err := f.registry.OwnerOf(ctx, 1)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != seller {
		t.Fatalf("owner after failed execution = %q, want %q", owner, seller)
	}
	order, err := f.market.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != entities.OrderOpen {
		t.Fatalf("order status = %s, want %s", order.Status, entities.OrderOpen)
	}
	if got := f.balance(t, seller); !got.IsZero() {
		t.Fatalf("seller balance = %s, want 0", got)
	}
	if got := f.balance(t, feeHolder); !got.IsZero() {
		t.Fatalf("fee holder balance = %s, want 0", got)
	}
}

func TestExecuteOrderRequiresFullAllowanceBeforeAssetMoves(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000")

	f.listAsset(t, 1)
	// Buyer holds the funds but only approved part of the price: enough for
	// the seller leg, not the fee leg. The execution must fail before the
	// asset moves, not between the two payment legs.
	if err := f.ledger.Service.Mint(ctx, buyer, price); err != nil {
		t.Fatalf("fund buyer: %v", err)
	}
	if err := f.ledger.Service.Approve(ctx, buyer, engineAccount, dec(t, "970")); err != nil {
		t.Fatalf("approve: %v", err)
	}
	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	err = f.market.ExecuteOrder(ctx, buyer, orderID, price, 1)
	if !errors.Is(err, balanceerrors.ErrInsufficientAllowance) {
		t.Fatalf("execute error = %v, want ledger ErrInsufficientAllowance", err)
	}
	owner, err := f.registry.OwnerOf(ctx, 1)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != seller {
		t.Fatalf("owner after failed execution = %q, want %q", owner, seller)
	}
	if got := f.balance(t, buyer); !got.Equal(price) {
		t.Fatalf("buyer balance = %s, want %s", got, price)
	}
}

func TestExecuteOrderPropagatesLockedAsset(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000")

	f.listAsset(t, 1)
	f.fundBuyer(t, price)
	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := f.registry.Deposit(ctx, seller, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	err = f.market.ExecuteOrder(ctx, buyer, orderID, price, 1)
	if !errors.Is(err, registryerrors.ErrTokenLocked) {
		t.Fatalf("execute error = %v, want registry ErrTokenLocked", err)
	}
	// No payment moved.
	if got := f.balance(t, buyer); !got.Equal(price) {
		t.Fatalf("buyer balance = %s, want %s", got, price)
	}
}

func TestSetFeeRateValidation(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()

	if err := f.market.SetFeeRate(ctx, seller, 1000); err == nil {
		t.Fatal("expected non-admin fee change to fail")
	}
	if err := f.market.SetFeeRate(ctx, admin, 1_000_000); !errors.Is(err, domainerrors.ErrFeeRateInvalid) {
		t.Fatalf("rate at denominator error = %v, want ErrFeeRateInvalid", err)
	}
	if err := f.market.SetFeeRate(ctx, admin, -1); !errors.Is(err, domainerrors.ErrFeeRateInvalid) {
		t.Fatalf("negative rate error = %v, want ErrFeeRateInvalid", err)
	}
	if err := f.market.SetFeeRate(ctx, admin, 999_999); err != nil {
		t.Fatalf("max valid rate: %v", err)
	}
}

func TestSetFeeHolderValidation(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()

	if err := f.market.SetFeeHolder(ctx, admin, ""); !errors.Is(err, domainerrors.ErrInvalidFeeHolder) {
		t.Fatalf("empty holder error = %v, want ErrInvalidFeeHolder", err)
	}
	if err := f.market.SetFeeHolder(ctx, admin, engineAccount); !errors.Is(err, domainerrors.ErrInvalidFeeHolder) {
		t.Fatalf("engine holder error = %v, want ErrInvalidFeeHolder", err)
	}
	if err := f.market.SetFeeHolder(ctx, admin, "treasury"); err != nil {
		t.Fatalf("set fee holder: %v", err)
	}
	cfg, err := f.market.FeeConfig(ctx)
	if err != nil {
		t.Fatalf("fee config: %v", err)
	}
	if cfg.FeeHolder != "treasury" {
		t.Fatalf("fee holder = %q, want treasury", cfg.FeeHolder)
	}
}

func TestOrderEventsFlowThroughOutbox(t *testing.T) {
	f := newFixture(t, 30000)
	ctx := context.Background()
	price := dec(t, "1000000")

	f.listAsset(t, 1)
	f.fundBuyer(t, price)
	orderID, err := f.market.CreateOrder(ctx, seller, 1, price, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := f.market.ExecuteOrder(ctx, buyer, orderID, price, 1); err != nil {
		t.Fatalf("execute order: %v", err)
	}

	pending, err := f.store.Pending(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending events = %d, want 2", len(pending))
	}
	if pending[0].Envelope.EventType != "order.created" {
		t.Fatalf("first event = %s, want order.created", pending[0].Envelope.EventType)
	}
	payload, ok := pending[0].Envelope.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T, want map[string]any", pending[0].Envelope.Payload)
	}
	if got := payload["per_item_fee"]; got != "30000" {
		t.Fatalf("per_item_fee payload = %v, want 30000", got)
	}
	if pending[1].Envelope.EventType != "order.executed" {
		t.Fatalf("second event = %s, want order.executed", pending[1].Envelope.EventType)
	}

	var published []ports.EventEnvelope
	relay := application.Relay{
		Outbox: f.store,
		Publisher: publisherFunc(func(_ context.Context, envelope ports.EventEnvelope) error {
			published = append(published, envelope)
			return nil
		}),
	}
	if err := relay.DrainOnce(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("published = %d, want 2", len(published))
	}
	remaining, err := f.store.Pending(ctx, 10)
	if err != nil {
		t.Fatalf("pending after drain: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("pending after drain = %d, want 0", len(remaining))
	}
}

type publisherFunc func(ctx context.Context, envelope ports.EventEnvelope) error

func (f publisherFunc) Publish(ctx context.Context, envelope ports.EventEnvelope) error {
	return f(ctx, envelope)
}
