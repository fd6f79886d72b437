package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	accesserrors "mystic/contexts/identity-access/access-control/domain/errors"
	accesshttp "mystic/contexts/identity-access/access-control/transport/http"
)

func writeAccessError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accesshttp.ErrorResponse{Code: code, Message: message})
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accesserrors.ErrUnknownRole),
		errors.Is(err, accesserrors.ErrInvalidAccount):
		writeAccessError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, accesserrors.ErrUnauthorized):
		writeAccessError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, accesserrors.ErrLastAdmin):
		writeAccessError(w, http.StatusConflict, "last_admin", err.Error())
	default:
		writeAccessError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req accesshttp.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.access.Handler.GrantRoleHandler(r.Context(), caller, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req accesshttp.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.access.Handler.RevokeRoleHandler(r.Context(), caller, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasRole(w http.ResponseWriter, r *http.Request) {
	resp, err := s.access.Handler.HasRoleHandler(r.Context(), r.PathValue("role"), r.PathValue("account"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
