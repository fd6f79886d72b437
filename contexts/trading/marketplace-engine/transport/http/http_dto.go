package httptransport

type CreateOrderRequest struct {
	AssetID   uint64 `json:"asset_id"`
	PriceUnit string `json:"price_unit"`
	Quantity  uint64 `json:"quantity"`
}

type CreateOrderResponse struct {
	Status     string `json:"status"`
	OrderID    uint64 `json:"order_id"`
	PerItemFee string `json:"per_item_fee"`
}

type CancelOrderRequest struct {
	OrderID uint64 `json:"order_id"`
}

type ExecuteOrderRequest struct {
	OrderID   uint64 `json:"order_id"`
	PriceUnit string `json:"price_unit"`
	Quantity  uint64 `json:"quantity"`
}

type FeeRateRequest struct {
	FeeRate int64 `json:"fee_rate"`
}

type FeeHolderRequest struct {
	FeeHolder string `json:"fee_holder"`
}

type MutationResponse struct {
	Status  string `json:"status"`
	OrderID uint64 `json:"order_id,omitempty"`
}

type OrderResponse struct {
	Status string `json:"status"`
	Order  Order  `json:"order"`
}

type OrderListResponse struct {
	Status string  `json:"status"`
	Orders []Order `json:"orders"`
}

type Order struct {
	OrderID    uint64 `json:"order_id"`
	AssetID    uint64 `json:"asset_id"`
	Seller     string `json:"seller"`
	PriceUnit  string `json:"price_unit"`
	PerItemFee string `json:"per_item_fee"`
	Quantity   uint64 `json:"quantity"`
	OrderState string `json:"order_state"`
}

type FeeConfigResponse struct {
	Status    string `json:"status"`
	FeeRate   int64  `json:"fee_rate"`
	FeeHolder string `json:"fee_holder"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
