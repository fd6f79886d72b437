package httpadapter

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"mystic/contexts/asset-core/asset-registry/application"
	domainerrors "mystic/contexts/asset-core/asset-registry/domain/errors"
	httptransport "mystic/contexts/asset-core/asset-registry/transport/http"
)

type Handler struct {
	Service *application.Service
	Logger  *slog.Logger
}

func (h Handler) MintHandler(
	ctx context.Context,
	caller string,
	req httptransport.MintRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.Mint(ctx, caller, req.To, req.AssetID); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", AssetID: req.AssetID}, nil
}

func (h Handler) ClaimHandler(
	ctx context.Context,
	caller string,
	req httptransport.ClaimRequest,
) (httptransport.MutationResponse, error) {
	signature, err := decodeSignature(req.Signature)
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	if err := h.Service.Claim(ctx, caller, req.AssetID, signature); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", AssetID: req.AssetID}, nil
}

func (h Handler) DepositHandler(
	ctx context.Context,
	caller string,
	req httptransport.DepositRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.Deposit(ctx, caller, req.AssetID); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", AssetID: req.AssetID}, nil
}

func (h Handler) WithdrawHandler(
	ctx context.Context,
	caller string,
	req httptransport.WithdrawRequest,
) (httptransport.MutationResponse, error) {
	signature, err := decodeSignature(req.Signature)
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	if err := h.Service.Withdraw(ctx, caller, req.AssetID, req.Nonce, signature); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", AssetID: req.AssetID}, nil
}

func (h Handler) TransferHandler(
	ctx context.Context,
	caller string,
	req httptransport.TransferRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.Transfer(ctx, caller, req.From, req.To, req.AssetID); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", AssetID: req.AssetID}, nil
}

func (h Handler) ApproveHandler(
	ctx context.Context,
	caller string,
	req httptransport.ApproveRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.Approve(ctx, caller, req.AssetID, req.Spender); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", AssetID: req.AssetID}, nil
}

func (h Handler) ApprovalForAllHandler(
	ctx context.Context,
	caller string,
	req httptransport.ApprovalForAllRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.SetApprovalForAll(ctx, caller, req.Operator, req.Approved); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success"}, nil
}

func (h Handler) SetRestrictionHandler(
	ctx context.Context,
	caller string,
	req httptransport.RestrictionRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.SetTransferRestriction(ctx, caller, req.Enabled); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success"}, nil
}

func (h Handler) SetAllowlistHandler(
	ctx context.Context,
	caller string,
	req httptransport.AllowlistRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.SetMarketplaceAllowlist(ctx, caller, req.Account, req.Allowed); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success"}, nil
}

func (h Handler) SetBaseURIHandler(
	ctx context.Context,
	caller string,
	req httptransport.BaseURIRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.SetBaseURI(ctx, caller, req.URI); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success"}, nil
}

func (h Handler) SetTokenURIHandler(
	ctx context.Context,
	caller string,
	req httptransport.TokenURIRequest,
) (httptransport.MutationResponse, error) {
	if err := h.Service.SetTokenURI(ctx, caller, req.AssetID, req.URI); err != nil {
		return httptransport.MutationResponse{}, err
	}
	return httptransport.MutationResponse{Status: "success", AssetID: req.AssetID}, nil
}

func (h Handler) GetAssetHandler(
	ctx context.Context,
	assetID uint64,
) (httptransport.AssetResponse, error) {
	asset, err := h.Service.GetAsset(ctx, assetID)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	uri, err := h.Service.TokenURI(ctx, assetID)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return httptransport.AssetResponse{
		Status:        "success",
		AssetID:       asset.AssetID,
		Owner:         asset.Owner,
		Locked:        asset.Locked,
		WithdrawNonce: asset.WithdrawNonce,
		TokenURI:      uri,
		MintedAtUTC:   asset.MintedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) GetNonceHandler(
	ctx context.Context,
	assetID uint64,
) (httptransport.NonceResponse, error) {
	nonce, err := h.Service.CurrentNonce(ctx, assetID)
	if err != nil {
		return httptransport.NonceResponse{}, err
	}
	return httptransport.NonceResponse{
		Status:  "success",
		AssetID: assetID,
		Nonce:   nonce,
	}, nil
}

func decodeSignature(raw string) ([]byte, error) {
	signature, err := hex.DecodeString(raw)
	if err != nil {
		return nil, domainerrors.ErrVerificationFailed
	}
	return signature, nil
}
