package httpadapter

import (
	"context"
	"encoding/hex"
	"log/slog"

	"mystic/contexts/finance-core/payment-ledger/application"
	domainerrors "mystic/contexts/finance-core/payment-ledger/domain/errors"
	httptransport "mystic/contexts/finance-core/payment-ledger/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Service *application.Service
	Logger  *slog.Logger
}

func (h Handler) DepositHandler(
	ctx context.Context,
	caller string,
	req httptransport.DepositRequest,
) (httptransport.MutationResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	if err := h.Service.Deposit(ctx, caller, amount); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", Amount: amount.String()}, nil
}

func (h Handler) WithdrawHandler(
	ctx context.Context,
	caller string,
	req httptransport.WithdrawRequest,
) (httptransport.MutationResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	if err := h.Service.Withdraw(ctx, caller, req.To, amount); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", Amount: amount.String()}, nil
}

func (h Handler) ClaimWithdrawHandler(
	ctx context.Context,
	caller string,
	req httptransport.ClaimWithdrawRequest,
) (httptransport.MutationResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	signature, err := hex.DecodeString(req.Signature)
	if err != nil {
		return httptransport.MutationResponse{}, domainerrors.ErrVerificationFailed
	}
	if err := h.Service.ClaimWithdraw(ctx, caller, amount, req.Nonce, req.Expiry, signature); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", Amount: amount.String()}, nil
}

func (h Handler) GetNonceHandler(
	ctx context.Context,
	account string,
) (httptransport.NonceResponse, error) {
	nonce, err := h.Service.NonceOf(ctx, account)
	if err != nil {
		return httptransport.NonceResponse{}, err
	}
	return httptransport.NonceResponse{
		Status:  "success",
		Account: account,
		Nonce:   nonce,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domainerrors.ErrInvalidAmount
	}
	return amount, nil
}
