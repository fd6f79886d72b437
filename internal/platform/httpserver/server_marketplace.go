package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	registryerrors "mystic/contexts/asset-core/asset-registry/domain/errors"
	balanceerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"
	marketerrors "mystic/contexts/trading/marketplace-engine/domain/errors"
	markethttp "mystic/contexts/trading/marketplace-engine/transport/http"
)

func writeMarketError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, markethttp.ErrorResponse{Code: code, Message: message})
}

func writeMarketDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, marketerrors.ErrPriceInvalid),
		errors.Is(err, marketerrors.ErrFeeRateInvalid),
		errors.Is(err, marketerrors.ErrInvalidFeeHolder):
		writeMarketError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, marketerrors.ErrNotPublished):
		writeMarketError(w, http.StatusNotFound, "not_published", err.Error())
	case errors.Is(err, marketerrors.ErrPriceMismatch):
		writeMarketError(w, http.StatusConflict, "price_mismatch", err.Error())
	case errors.Is(err, marketerrors.ErrQuantityMismatch):
		writeMarketError(w, http.StatusConflict, "quantity_mismatch", err.Error())
	case errors.Is(err, marketerrors.ErrNotOwnerOrBalance):
		writeMarketError(w, http.StatusForbidden, "not_owner_or_insufficient_balance", err.Error())
	case errors.Is(err, marketerrors.ErrNotApproved):
		writeMarketError(w, http.StatusForbidden, "not_approved_for_transfer", err.Error())
	case errors.Is(err, marketerrors.ErrUnauthorized),
		errors.Is(err, marketerrors.ErrUnauthorizedSeller):
		writeMarketError(w, http.StatusForbidden, "unauthorized", err.Error())
	// Collaborator failures surface verbatim, mapped to their own codes.
	case errors.Is(err, registryerrors.ErrTokenLocked):
		writeMarketError(w, http.StatusConflict, "token_locked", err.Error())
	case errors.Is(err, registryerrors.ErrRestrictedTransfer):
		writeMarketError(w, http.StatusForbidden, "restricted_transfer", err.Error())
	case errors.Is(err, balanceerrors.ErrInsufficientBalance):
		writeMarketError(w, http.StatusConflict, "insufficient_balance", err.Error())
	case errors.Is(err, balanceerrors.ErrInsufficientAllowance):
		writeMarketError(w, http.StatusConflict, "insufficient_allowance", err.Error())
	default:
		writeMarketError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireMarketCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := resolveCaller(r)
	if caller == "" {
		writeMarketError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return "", false
	}
	return caller, true
}

func parseOrderPathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	orderID, err := strconv.ParseUint(r.PathValue("order_id"), 10, 64)
	if err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be an unsigned integer")
		return 0, false
	}
	return orderID, true
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.CreateOrderHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketCaller(w, r)
	if !ok {
		return
	}
	orderID, ok := parseOrderPathID(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.CancelOrderHandler(r.Context(), caller, markethttp.CancelOrderRequest{OrderID: orderID})
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketCaller(w, r)
	if !ok {
		return
	}
	orderID, ok := parseOrderPathID(w, r)
	if !ok {
		return
	}
	var req markethttp.ExecuteOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	req.OrderID = orderID
	resp, err := s.market.Handler.ExecuteOrderHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderPathID(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.GetOrderHandler(r.Context(), orderID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListOpenOrders(w http.ResponseWriter, r *http.Request) {
	resp, err := s.market.Handler.ListOpenOrdersHandler(r.Context())
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetFeeRate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.FeeRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.SetFeeRateHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetFeeHolder(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMarketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.FeeHolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.SetFeeHolderHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetFeeConfig(w http.ResponseWriter, r *http.Request) {
	resp, err := s.market.Handler.GetFeeConfigHandler(r.Context())
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
