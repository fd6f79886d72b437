package httptransport

type CheckInResponse struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	Status         string `json:"status"`
	Account        string `json:"account"`
	CheckedInToday bool   `json:"checked_in_today"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
