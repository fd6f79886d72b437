package httpserver

import (
	"errors"
	"net/http"

	checkinerrors "mystic/contexts/community-experience/daily-checkin/domain/errors"
	checkinhttp "mystic/contexts/community-experience/daily-checkin/transport/http"
)

func writeCheckinError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, checkinhttp.ErrorResponse{Code: code, Message: message})
}

func writeCheckinDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkinerrors.ErrInvalidAccount):
		writeCheckinError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, checkinerrors.ErrAlreadyCheckedIn):
		writeCheckinError(w, http.StatusConflict, "already_checked_in", err.Error())
	default:
		writeCheckinError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeCheckinError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	resp, err := s.checkin.Handler.CheckInHandler(r.Context(), caller)
	if err != nil {
		writeCheckinDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckInStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.checkin.Handler.StatusHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeCheckinDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
