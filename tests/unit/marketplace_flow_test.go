package unit

import (
	"context"
	"testing"

	assetregistry "mystic/contexts/asset-core/asset-registry"
	balanceledger "mystic/contexts/finance-core/balance-ledger"
	marketplaceengine "mystic/contexts/trading/marketplace-engine"
	"mystic/contexts/trading/marketplace-engine/domain/entities"

	"github.com/shopspring/decimal"
)

const (
	engineAccount    = "marketplace-engine"
	feeHolderAccount = "treasury"
)

type marketFixture struct {
	access   accessFixture
	registry assetregistry.Module
	balances balanceledger.Module
	market   marketplaceengine.Module
}

func newMarketFixture(t *testing.T) marketFixture {
	t.Helper()
	fx := newAccessFixture(t)
	registry := assetregistry.NewInMemoryModule(fx.access.Service, "", nil)
	balances := balanceledger.NewInMemoryModule(nil)
	market := marketplaceengine.NewInMemoryModule(marketplaceengine.InMemoryConfig{
		Registry:  registry.Service,
		Ledger:    balances.Service,
		Access:    fx.access.Service,
		Engine:    engineAccount,
		FeeRate:   30_000,
		FeeHolder: feeHolderAccount,
	})
	return marketFixture{access: fx, registry: registry, balances: balances, market: market}
}

func (m marketFixture) listAsset(t *testing.T, seller string, assetID uint64, price decimal.Decimal) uint64 {
	t.Helper()
	ctx := context.Background()
	if err := m.registry.Service.Mint(ctx, m.access.operator, seller, assetID); err != nil {
		t.Fatalf("mint asset %d: %v", assetID, err)
	}
	if err := m.registry.Service.Approve(ctx, seller, assetID, engineAccount); err != nil {
		t.Fatalf("approve engine for asset %d: %v", assetID, err)
	}
	orderID, err := m.market.Service.CreateOrder(ctx, seller, assetID, price, 1)
	if err != nil {
		t.Fatalf("create order for asset %d: %v", assetID, err)
	}
	return orderID
}

func (m marketFixture) fundBuyer(t *testing.T, buyer string, amount decimal.Decimal) {
	t.Helper()
	ctx := context.Background()
	if err := m.balances.Service.Mint(ctx, buyer, amount); err != nil {
		t.Fatalf("fund %s: %v", buyer, err)
	}
	if err := m.balances.Service.Approve(ctx, buyer, engineAccount, amount); err != nil {
		t.Fatalf("approve engine spend for %s: %v", buyer, err)
	}
}

func (m marketFixture) balance(t *testing.T, account string) decimal.Decimal {
	t.Helper()
	value, err := m.balances.Service.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of %s: %v", account, err)
	}
	return value
}

// The reference split: rate 30000/1e6 on a 1e17 price takes a 3e15 fee and
// pays the seller 9.7e16. The three balances must also conserve the total.
func TestMarketplaceExecutionConservesValueAndSplitsFee(t *testing.T) {
	ctx := context.Background()
	m := newMarketFixture(t)

	price := decimal.New(1, 17)
	orderID := m.listAsset(t, "alice", 1, price)
	m.fundBuyer(t, "bob", price)

	if err := m.market.Service.ExecuteOrder(ctx, "bob", orderID, price, 1); err != nil {
		t.Fatalf("execute order: %v", err)
	}

	sellerAmount := m.balance(t, "alice")
	feeAmount := m.balance(t, feeHolderAccount)
	buyerAmount := m.balance(t, "bob")

	if !sellerAmount.Equal(decimal.New(97, 15)) {
		t.Fatalf("expected seller proceeds 9.7e16, got %s", sellerAmount)
	}
	if !feeAmount.Equal(decimal.New(3, 15)) {
		t.Fatalf("expected fee 3e15, got %s", feeAmount)
	}
	if !buyerAmount.IsZero() {
		t.Fatalf("expected buyer to spend full price, got %s", buyerAmount)
	}
	if !sellerAmount.Add(feeAmount).Add(buyerAmount).Equal(price) {
		t.Fatalf("value not conserved across the split")
	}

	owner, err := m.registry.Service.OwnerOf(ctx, 1)
	if err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if owner != "bob" {
		t.Fatalf("expected bob to own the asset, got %q", owner)
	}

	order, err := m.market.Service.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != entities.OrderExecuted {
		t.Fatalf("expected executed status, got %s", order.Status)
	}
}

func TestMarketplaceExecutesUnderTransferRestriction(t *testing.T) {
	ctx := context.Background()
	m := newMarketFixture(t)

	// Restriction on, engine allowlisted as the mediating caller. Direct
	// transfers stay blocked while order execution goes through.
	if err := m.registry.Service.SetTransferRestriction(ctx, m.access.operator, true); err != nil {
		t.Fatalf("enable restriction: %v", err)
	}
	if err := m.registry.Service.SetMarketplaceAllowlist(ctx, m.access.operator, engineAccount, true); err != nil {
		t.Fatalf("allowlist engine: %v", err)
	}

	price := decimal.NewFromInt(1_000_000)
	orderID := m.listAsset(t, "alice", 2, price)
	m.fundBuyer(t, "bob", price)

	if err := m.market.Service.ExecuteOrder(ctx, "bob", orderID, price, 1); err != nil {
		t.Fatalf("restricted execution failed: %v", err)
	}
	owner, err := m.registry.Service.OwnerOf(ctx, 2)
	if err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if owner != "bob" {
		t.Fatalf("expected bob to own the asset, got %q", owner)
	}
}

func TestMarketplaceFeeSnapshotSurvivesRateChange(t *testing.T) {
	ctx := context.Background()
	m := newMarketFixture(t)

	price := decimal.NewFromInt(1_000_000)
	orderID := m.listAsset(t, "alice", 3, price)
	m.fundBuyer(t, "bob", price)

	// Half the price as fee from now on; the open order keeps its snapshot.
	if err := m.market.Service.SetFeeRate(ctx, m.access.admin, 500_000); err != nil {
		t.Fatalf("set fee rate: %v", err)
	}
	if err := m.market.Service.ExecuteOrder(ctx, "bob", orderID, price, 1); err != nil {
		t.Fatalf("execute order: %v", err)
	}

	feeAmount := m.balance(t, feeHolderAccount)
	if !feeAmount.Equal(decimal.NewFromInt(30_000)) {
		t.Fatalf("expected snapshotted fee 30000, got %s", feeAmount)
	}
}
