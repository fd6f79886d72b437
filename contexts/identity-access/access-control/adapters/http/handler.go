package httpadapter

import (
	"context"
	"log/slog"

	"mystic/contexts/identity-access/access-control/application"
	"mystic/contexts/identity-access/access-control/domain/entities"
	httptransport "mystic/contexts/identity-access/access-control/transport/http"
)

type Handler struct {
	Service *application.Service
	Logger  *slog.Logger
}

func (h Handler) GrantRoleHandler(
	ctx context.Context,
	caller string,
	req httptransport.RoleChangeRequest,
) (httptransport.RoleChangeResponse, error) {
	role, err := entities.ParseRole(req.Role)
	if err != nil {
		return httptransport.RoleChangeResponse{}, err
	}
	if err := h.Service.GrantRole(ctx, caller, role, req.Account); err != nil {
		return httptransport.RoleChangeResponse{}, err
	}
	return httptransport.RoleChangeResponse{
		Status:  "success",
		Role:    string(role),
		Account: req.Account,
	}, nil
}

func (h Handler) RevokeRoleHandler(
	ctx context.Context,
	caller string,
	req httptransport.RoleChangeRequest,
) (httptransport.RoleChangeResponse, error) {
	role, err := entities.ParseRole(req.Role)
	if err != nil {
		return httptransport.RoleChangeResponse{}, err
	}
	if err := h.Service.RevokeRole(ctx, caller, role, req.Account); err != nil {
		return httptransport.RoleChangeResponse{}, err
	}
	return httptransport.RoleChangeResponse{
		Status:  "success",
		Role:    string(role),
		Account: req.Account,
	}, nil
}

func (h Handler) HasRoleHandler(
	ctx context.Context,
	rawRole string,
	account string,
) (httptransport.HasRoleResponse, error) {
	role, err := entities.ParseRole(rawRole)
	if err != nil {
		return httptransport.HasRoleResponse{}, err
	}
	held, err := h.Service.HasRole(ctx, role, account)
	if err != nil {
		return httptransport.HasRoleResponse{}, err
	}
	return httptransport.HasRoleResponse{
		Status:  "success",
		Role:    string(role),
		Account: account,
		HasRole: held,
	}, nil
}
