package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state. OPEN orders with remaining
// quantity keep their status across partial executions.
type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderExecuted  OrderStatus = "EXECUTED"
)

// Order is a standing offer to sell an asset at a fixed unit price. The
// per-item fee is snapshotted from the fee rate at creation time, so later
// rate changes never affect an open order.
type Order struct {
	OrderID    uint64
	AssetID    uint64
	Seller     string
	PriceUnit  decimal.Decimal
	PerItemFee decimal.Decimal
	Quantity   uint64
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Open reports whether the order can still be cancelled or executed.
func (o Order) Open() bool {
	return o.Status == OrderOpen
}

// FeeConfig is the engine-wide fee policy applied to newly created orders.
type FeeConfig struct {
	FeeRate   int64
	FeeHolder string
}
