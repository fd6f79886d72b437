package httptransport

type RoleChangeRequest struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

type RoleChangeResponse struct {
	Status  string `json:"status"`
	Role    string `json:"role"`
	Account string `json:"account"`
}

type HasRoleResponse struct {
	Status  string `json:"status"`
	Role    string `json:"role"`
	Account string `json:"account"`
	HasRole bool   `json:"has_role"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
