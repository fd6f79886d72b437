package httpadapter

import (
	"context"
	"log/slog"

	"mystic/contexts/trading/marketplace-engine/application"
	"mystic/contexts/trading/marketplace-engine/domain/entities"
	domainerrors "mystic/contexts/trading/marketplace-engine/domain/errors"
	httptransport "mystic/contexts/trading/marketplace-engine/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Service *application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateOrderHandler(
	ctx context.Context,
	caller string,
	req httptransport.CreateOrderRequest,
) (httptransport.CreateOrderResponse, error) {
	price, err := parsePrice(req.PriceUnit)
	if err != nil {
		return httptransport.CreateOrderResponse{}, err
	}
	orderID, err := h.Service.CreateOrder(ctx, caller, req.AssetID, price, req.Quantity)
	if err != nil {
		return httptransport.CreateOrderResponse{}, err
	}
	order, err := h.Service.GetOrder(ctx, orderID)
	if err != nil {
		return httptransport.CreateOrderResponse{}, err
	}
	return httptransport.CreateOrderResponse{
		Status:     "success",
		OrderID:    orderID,
		PerItemFee: order.PerItemFee.String(),
	}, nil
}

func (h Handler) CancelOrderHandler(
	ctx context.Context,
	caller string,
	req httptransport.CancelOrderRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.CancelOrder(ctx, caller, req.OrderID); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", OrderID: req.OrderID}, nil
}

func (h Handler) ExecuteOrderHandler(
	ctx context.Context,
	caller string,
	req httptransport.ExecuteOrderRequest,
) (httptransport.MutationResponse, error) {
	price, err := parsePrice(req.PriceUnit)
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	if err := h.Service.ExecuteOrder(ctx, caller, req.OrderID, price, req.Quantity); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", OrderID: req.OrderID}, nil
}

func (h Handler) SetFeeRateHandler(
	ctx context.Context,
	caller string,
	req httptransport.FeeRateRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.SetFeeRate(ctx, caller, req.FeeRate); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success"}, nil
}

func (h Handler) SetFeeHolderHandler(
	ctx context.Context,
	caller string,
	req httptransport.FeeHolderRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.SetFeeHolder(ctx, caller, req.FeeHolder); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success"}, nil
}

func (h Handler) GetOrderHandler(
	ctx context.Context,
	orderID uint64,
) (httptransport.OrderResponse, error) {
	order, err := h.Service.GetOrder(ctx, orderID)
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{
		Status: "success",
		Order:  toTransportOrder(order),
	}, nil
}

func (h Handler) ListOpenOrdersHandler(
	ctx context.Context,
) (httptransport.OrderListResponse, error) {
	orders, err := h.Service.OpenOrders(ctx)
	if err != nil {
		return httptransport.OrderListResponse{}, err
	}
	out := make([]httptransport.Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, toTransportOrder(order))
	}
	return httptransport.OrderListResponse{Status: "success", Orders: out}, nil
}

func (h Handler) GetFeeConfigHandler(
	ctx context.Context,
) (httptransport.FeeConfigResponse, error) {
	cfg, err := h.Service.FeeConfig(ctx)
	if err != nil {
		return httptransport.FeeConfigResponse{}, err
	}
	return httptransport.FeeConfigResponse{
		Status:    "success",
		FeeRate:   cfg.FeeRate,
		FeeHolder: cfg.FeeHolder,
	}, nil
}

func toTransportOrder(order entities.Order) httptransport.Order {
	return httptransport.Order{
		OrderID:    order.OrderID,
		AssetID:    order.AssetID,
		Seller:     order.Seller,
		PriceUnit:  order.PriceUnit.String(),
		PerItemFee: order.PerItemFee.String(),
		Quantity:   order.Quantity,
		OrderState: string(order.Status),
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domainerrors.ErrPriceInvalid
	}
	return price, nil
}
