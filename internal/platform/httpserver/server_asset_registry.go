package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	registryerrors "mystic/contexts/asset-core/asset-registry/domain/errors"
	registryhttp "mystic/contexts/asset-core/asset-registry/transport/http"
)

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{Code: code, Message: message})
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrInvalidAccount):
		writeRegistryError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, registryerrors.ErrNotFound):
		writeRegistryError(w, http.StatusNotFound, "asset_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrAlreadyExists):
		writeRegistryError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, registryerrors.ErrAlreadyDeposited):
		writeRegistryError(w, http.StatusConflict, "already_deposited", err.Error())
	case errors.Is(err, registryerrors.ErrNotLocked):
		writeRegistryError(w, http.StatusConflict, "not_locked", err.Error())
	case errors.Is(err, registryerrors.ErrTokenLocked):
		writeRegistryError(w, http.StatusConflict, "token_locked", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidNonce):
		writeRegistryError(w, http.StatusConflict, "invalid_nonce", err.Error())
	case errors.Is(err, registryerrors.ErrRestrictedTransfer):
		writeRegistryError(w, http.StatusForbidden, "restricted_transfer", err.Error())
	case errors.Is(err, registryerrors.ErrNotOwnerNorApproved):
		writeRegistryError(w, http.StatusForbidden, "not_owner_nor_approved", err.Error())
	case errors.Is(err, registryerrors.ErrVerificationFailed):
		writeRegistryError(w, http.StatusUnauthorized, "verification_failed", err.Error())
	default:
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireRegistryCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := resolveCaller(r)
	if caller == "" {
		writeRegistryError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return "", false
	}
	return caller, true
}

func parseAssetPathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	assetID, err := strconv.ParseUint(r.PathValue("asset_id"), 10, 64)
	if err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_asset_id", "asset_id must be an unsigned integer")
		return 0, false
	}
	return assetID, true
}

func (s *Server) handleAssetMint(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.MintHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.ClaimHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.DepositHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.WithdrawHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.TransferHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.ApproveHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetApprovalForAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.ApprovalForAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.ApprovalForAllHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetRestriction(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.RestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.SetRestrictionHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetAllowlist(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.AllowlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.SetAllowlistHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetBaseURI(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.BaseURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.SetBaseURIHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetTokenURI(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRegistryCaller(w, r)
	if !ok {
		return
	}
	var req registryhttp.TokenURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.assets.Handler.SetTokenURIHandler(r.Context(), caller, req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetGet(w http.ResponseWriter, r *http.Request) {
	assetID, ok := parseAssetPathID(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.GetAssetHandler(r.Context(), assetID)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetNonce(w http.ResponseWriter, r *http.Request) {
	assetID, ok := parseAssetPathID(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.GetNonceHandler(r.Context(), assetID)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
