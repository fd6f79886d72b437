package httpadapter

import (
	"context"
	"log/slog"

	"mystic/contexts/community-experience/daily-checkin/application"
	httptransport "mystic/contexts/community-experience/daily-checkin/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CheckInHandler(
	ctx context.Context,
	caller string,
) (httptransport.CheckInResponse, error) {
	if err := h.Service.CheckIn(ctx, caller); err != nil {
		return httptransport.CheckInResponse{}, err
	}
	return httptransport.CheckInResponse{Status: "success"}, nil
}

func (h Handler) StatusHandler(
	ctx context.Context,
	account string,
) (httptransport.StatusResponse, error) {
	checkedIn, err := h.Service.CheckedInToday(ctx, account)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{
		Status:         "success",
		Account:        account,
		CheckedInToday: checkedIn,
	}, nil
}
