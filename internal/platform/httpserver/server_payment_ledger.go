package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	balanceerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"
	paymenterrors "mystic/contexts/finance-core/payment-ledger/domain/errors"
	paymenthttp "mystic/contexts/finance-core/payment-ledger/transport/http"
)

func writePaymentError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, paymenthttp.ErrorResponse{Code: code, Message: message})
}

func writePaymentDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymenterrors.ErrInvalidAmount),
		errors.Is(err, paymenterrors.ErrInvalidAccount):
		writePaymentError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, paymenterrors.ErrInsufficientAllowance),
		errors.Is(err, balanceerrors.ErrInsufficientAllowance):
		writePaymentError(w, http.StatusConflict, "insufficient_allowance", err.Error())
	case errors.Is(err, balanceerrors.ErrInsufficientBalance):
		writePaymentError(w, http.StatusConflict, "insufficient_balance", err.Error())
	case errors.Is(err, paymenterrors.ErrInvalidNonce):
		writePaymentError(w, http.StatusConflict, "invalid_nonce", err.Error())
	case errors.Is(err, paymenterrors.ErrExpired):
		writePaymentError(w, http.StatusConflict, "expired", err.Error())
	case errors.Is(err, paymenterrors.ErrVerificationFailed):
		writePaymentError(w, http.StatusUnauthorized, "verification_failed", err.Error())
	default:
		writePaymentError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handlePaymentDeposit(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writePaymentError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req paymenthttp.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.payments.Handler.DepositHandler(r.Context(), caller, req)
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePaymentWithdraw(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writePaymentError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req paymenthttp.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.payments.Handler.WithdrawHandler(r.Context(), caller, req)
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePaymentClaimWithdraw(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writePaymentError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req paymenthttp.ClaimWithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.payments.Handler.ClaimWithdrawHandler(r.Context(), caller, req)
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePaymentNonce(w http.ResponseWriter, r *http.Request) {
	resp, err := s.payments.Handler.GetNonceHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
